package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in   string
		want SyncPhase
	}{
		{"full-import", PhaseFullImport},
		{"full", PhaseFullImport},
		{"FULL_DUMP", PhaseFullImport},
		{"delta-discovery", PhaseDeltaDiscovery},
		{"discover", PhaseDeltaDiscovery},
		{"find_delta", PhaseDeltaDiscovery},
		{"delta-import", PhaseDeltaImport},
		{"delta", PhaseDeltaImport},
		{"  Delta_Dump  ", PhaseDeltaImport},
		{"", PhaseNone},
		{"rebuild", PhaseNone},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePhase(tt.in))
		})
	}
}

func TestSyncPhaseString(t *testing.T) {
	assert.Equal(t, "full-import", PhaseFullImport.String())
	assert.Equal(t, "delta-discovery", PhaseDeltaDiscovery.String())
	assert.Equal(t, "delta-import", PhaseDeltaImport.String())
	assert.Equal(t, "none", PhaseNone.String())
	assert.Equal(t, "none", SyncPhase(99).String())
}

func TestParsePhaseRoundTripsCanonicalNames(t *testing.T) {
	for _, p := range []SyncPhase{PhaseFullImport, PhaseDeltaDiscovery, PhaseDeltaImport} {
		assert.Equal(t, p, ParsePhase(p.String()))
	}
}
