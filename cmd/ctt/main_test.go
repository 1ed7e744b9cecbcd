package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "ctt ")
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "bogus"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Unknown command")
}

func TestRunNoArgsPrintsUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestCatalogBuiltin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "catalog"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "PATTERN")
	assert.Contains(t, stdout.String(), "operator(s)")
}

func TestCatalogFilterByGuard(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "catalog", "-guard", "budget"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	// Every listed row must require the budget guard.
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.Contains(line, "\t") && !strings.Contains(line, "PATTERN") {
			assert.Contains(t, line, "BUDGET")
		}
	}
}

const passingManifest = `contract_id: contract-001
pipeline:
  - contract_definition
  - thermal_testing
  - effects_tracking
  - state_machine_validation
  - receipt_generation
  - swarm_orchestration
  - verification_pipeline
  - continuous_learning
  - distributed_consensus
  - time_travel_debugging
  - performance_prophet
  - quality_dashboard
phases:
  contract_definition:
    declared_phase_count: 12
  thermal_testing:
    bound: 8
    samples: [5, 7]
  receipt_generation:
    version: 1
    declared_checksum: 4660
    computed_checksum: 4660
  verification_pipeline:
    expected:
      - contract_definition
      - thermal_testing
      - receipt_generation
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVerifyPass(t *testing.T) {
	t.Setenv("CTT_AUDIT_BACKEND", "memory")
	path := writeManifest(t, passingManifest)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "verify", "-manifest", path, "-no-archive"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "Verdict  PASS")
	assert.Contains(t, stdout.String(), "Receipt")
}

func TestVerifyFailOnChecksumMismatch(t *testing.T) {
	t.Setenv("CTT_AUDIT_BACKEND", "memory")
	bad := strings.Replace(passingManifest, "computed_checksum: 4660", "computed_checksum: 39321", 1)
	path := writeManifest(t, bad)

	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "verify", "-manifest", path, "-no-archive"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "CHECKSUM_MISMATCH")
}

func TestVerifyMissingManifestFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"ctt", "verify"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "-manifest is required")
}
