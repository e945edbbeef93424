package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Property names understood by ParseStoreSettings.
const (
	PropHost           = "host"
	PropPort           = "port"
	PropDatabase       = "database"
	PropUsername       = "username"
	PropPassword       = "password"
	PropMapFields      = "mapMongoFields"
	PropReadPreference = "readPreference"
)

const (
	defaultHost           = "localhost"
	defaultPort           = "27017"
	defaultReadPreference = "secondaryPreferred"
)

// readPreferences are the modes a store deployment understands, keyed by
// their lower-case form.
var readPreferences = map[string]string{
	"primary":            "primary",
	"primarypreferred":   "primaryPreferred",
	"secondary":          "secondary",
	"secondarypreferred": "secondaryPreferred",
	"nearest":            "nearest",
}

// HostPort is one seed address of a store deployment.
type HostPort struct {
	Host string
	Port int
}

func (hp HostPort) String() string {
	return fmt.Sprintf("%s:%d", hp.Host, hp.Port)
}

// StoreSettings is the parsed connection configuration for one document
// store. Seeds always holds at least one address.
type StoreSettings struct {
	Database       string
	Seeds          []HostPort
	Username       string
	Password       string
	MapFields      bool
	ReadPreference string
}

// Addr renders the seed list as a comma-joined host:port string for logs
// and connection targets.
func (s StoreSettings) Addr() string {
	parts := make([]string, len(s.Seeds))
	for i, hp := range s.Seeds {
		parts[i] = hp.String()
	}
	return strings.Join(parts, ",")
}

// ParseStoreSettings builds StoreSettings from a flat property map.
//
// host and port each accept a comma-separated list. When the lists are the
// same length they pair up positionally; otherwise every host takes the
// first port. database is required. mapMongoFields enables path flattening
// and defaults to true; any value other than the literal "true" disables
// it. readPreference defaults to secondaryPreferred so imports read off
// replicas when the deployment has them.
func ParseStoreSettings(props map[string]string) (StoreSettings, error) {
	database := strings.TrimSpace(props[PropDatabase])
	if database == "" {
		return StoreSettings{}, &ConfigError{Key: PropDatabase, Reason: "database name must not be empty"}
	}

	hosts := splitList(props[PropHost], defaultHost)
	portTexts := splitList(props[PropPort], defaultPort)
	ports := make([]int, len(portTexts))
	for i, pt := range portTexts {
		p, err := strconv.Atoi(pt)
		if err != nil || p < 1 || p > 65535 {
			return StoreSettings{}, &ConfigError{Key: PropPort, Reason: fmt.Sprintf("invalid port %q", pt)}
		}
		ports[i] = p
	}

	seeds := make([]HostPort, len(hosts))
	for i, h := range hosts {
		port := ports[0]
		if len(ports) == len(hosts) {
			port = ports[i]
		}
		seeds[i] = HostPort{Host: h, Port: port}
	}

	mapFields := defaultString(props[PropMapFields], "true") == "true"

	rawPref := defaultString(props[PropReadPreference], defaultReadPreference)
	readPreference, ok := readPreferences[strings.ToLower(rawPref)]
	if !ok {
		return StoreSettings{}, &ConfigError{Key: PropReadPreference, Reason: fmt.Sprintf("unknown read preference %q", rawPref)}
	}

	return StoreSettings{
		Database:       database,
		Seeds:          seeds,
		Username:       strings.TrimSpace(props[PropUsername]),
		Password:       props[PropPassword],
		MapFields:      mapFields,
		ReadPreference: readPreference,
	}, nil
}

// Properties renders the settings back into the flat property form a
// session exposes. The password stays out; nothing downstream of
// connection setup may read it.
func (s StoreSettings) Properties() map[string]string {
	hosts := make([]string, len(s.Seeds))
	ports := make([]string, len(s.Seeds))
	for i, hp := range s.Seeds {
		hosts[i] = hp.Host
		ports[i] = strconv.Itoa(hp.Port)
	}
	return map[string]string{
		PropDatabase:       s.Database,
		PropHost:           strings.Join(hosts, ","),
		PropPort:           strings.Join(ports, ","),
		PropUsername:       s.Username,
		PropMapFields:      strconv.FormatBool(s.MapFields),
		PropReadPreference: s.ReadPreference,
	}
}

func splitList(raw, fallback string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, fallback)
	}
	return out
}

func defaultString(raw, fallback string) string {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	return strings.TrimSpace(raw)
}
