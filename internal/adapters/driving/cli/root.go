// Package cli provides the mongoflat command line interface. Commands
// talk to the core through the driving ports; main wires concrete
// services in through the Set functions before Execute runs.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driven"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
	"github.com/mongoflat/mongoflat/internal/logger"
)

// version is the build version, overridden at startup via SetVersion.
var version = "dev"

// Services the commands call. Left nil until main wires them; every
// command guards against running unconfigured.
var (
	importService    driving.Importer
	browseService    driving.BrowseService
	schedulerService driving.Scheduler
	configStore      driven.ConfigStore
)

// BootstrapOptions carries the root flag values into the wiring hook.
type BootstrapOptions struct {
	// ConfigPath is the --config value, empty for the default path.
	ConfigPath string

	// Fixtures is the --fixtures value, empty for the default directory.
	Fixtures string

	// ScheduleInterval overrides the configured sweep interval when
	// positive. Set by the watch command's --interval flag.
	ScheduleInterval time.Duration

	// PromptPassword reads a store password from the terminal. Nil
	// unless --ask-password was given.
	PromptPassword func() string
}

// bootstrapFn builds and wires the services once flags are parsed.
// rebuildFn rewires them from a reloaded configuration; the watch
// command calls it between scheduler restarts.
var (
	bootstrapFn func(opts BootstrapOptions) error
	rebuildFn   func(cfg domain.Config) error
)

// Root flag values.
var (
	verbose     bool
	configPath  string
	fixturesDir string
	askPassword bool
)

var rootCmd = &cobra.Command{
	Use:   "mongoflat",
	Short: "Import document-store collections into flat records",
	Long: `Mongoflat imports documents from a document store, flattens nested
fields into dotted paths, rewrites embedded datetimes to UTC and writes
the result as flat records into a local SQLite database.

Entities are configured in a TOML file. Each entity maps one collection
through an import query, with optional delta queries for incremental
imports driven by a stored watermark.`,
	SilenceUsage:      true,
	PersistentPreRunE: runRootSetup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&fixturesDir, "fixtures", "", "Directory holding fixture collections")
	rootCmd.PersistentFlags().BoolVar(&askPassword, "ask-password", false, "Prompt for the store password")
}

// runRootSetup applies global flags and hands control to the wiring
// hook. Tests leave the hook unset and assign the service vars directly.
func runRootSetup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// Version and help need no services, and must work without a
	// configuration file.
	if bootstrapFn == nil || cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	opts := BootstrapOptions{
		ConfigPath:       configPath,
		Fixtures:         fixturesDir,
		ScheduleInterval: watchInterval,
	}
	if askPassword {
		opts.PromptPassword = func() string {
			fmt.Fprint(cmd.ErrOrStderr(), "Store password: ")
			password := readPassword()
			fmt.Fprintln(cmd.ErrOrStderr())
			return password
		}
	}
	return bootstrapFn(opts)
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetImporter sets the import service used by the import and discover
// commands.
func SetImporter(s driving.Importer) {
	importService = s
}

// SetBrowseService sets the browse service used by the entities, records
// and runs commands.
func SetBrowseService(s driving.BrowseService) {
	browseService = s
}

// SetScheduler sets the scheduler used by the watch command.
func SetScheduler(s driving.Scheduler) {
	schedulerService = s
}

// SetConfigStore sets the config store the watch command observes for
// hot reloads.
func SetConfigStore(s driven.ConfigStore) {
	configStore = s
}

// SetBootstrap installs the wiring hook invoked after flag parsing.
func SetBootstrap(fn func(opts BootstrapOptions) error) {
	bootstrapFn = fn
}

// SetRebuild installs the rewiring hook the watch command invokes when
// the configuration file changes.
func SetRebuild(fn func(cfg domain.Config) error) {
	rebuildFn = fn
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
