package manifest

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// RunManifest is one verification run: the contract under test, the
// pipeline it declares, and the observed inputs for each phase. Phase
// blocks are optional; the runner executes only the phases that carry
// inputs, always in canonical order.
type RunManifest struct {
	ContractID string      `json:"contract_id" yaml:"contract_id"`
	Pipeline   []string    `json:"pipeline" yaml:"pipeline"`
	Phases     PhaseInputs `json:"phases" yaml:"phases"`
}

// PhaseInputs groups the per-phase input blocks, keyed by phase label.
type PhaseInputs struct {
	Contract     *ContractInput     `json:"contract_definition,omitempty" yaml:"contract_definition,omitempty"`
	Thermal      *ThermalInput      `json:"thermal_testing,omitempty" yaml:"thermal_testing,omitempty"`
	Effects      *EffectsInput      `json:"effects_tracking,omitempty" yaml:"effects_tracking,omitempty"`
	StateMachine *StateMachineInput `json:"state_machine_validation,omitempty" yaml:"state_machine_validation,omitempty"`
	Receipt      *ReceiptInput      `json:"receipt_generation,omitempty" yaml:"receipt_generation,omitempty"`
	Swarm        *SwarmInput        `json:"swarm_orchestration,omitempty" yaml:"swarm_orchestration,omitempty"`
	Verification *VerificationInput `json:"verification_pipeline,omitempty" yaml:"verification_pipeline,omitempty"`
	Learning     *LearningInput     `json:"continuous_learning,omitempty" yaml:"continuous_learning,omitempty"`
	Consensus    *ConsensusInput    `json:"distributed_consensus,omitempty" yaml:"distributed_consensus,omitempty"`
	Snapshot     *SnapshotInput     `json:"time_travel_debugging,omitempty" yaml:"time_travel_debugging,omitempty"`
	Prophet      *ProphetInput      `json:"performance_prophet,omitempty" yaml:"performance_prophet,omitempty"`
	Dashboard    *DashboardInput    `json:"quality_dashboard,omitempty" yaml:"quality_dashboard,omitempty"`
}

// ContractInput carries the phase count the contract declares for itself.
type ContractInput struct {
	DeclaredPhaseCount int `json:"declared_phase_count" yaml:"declared_phase_count"`
}

// ThermalInput carries a thermal budget and the τ samples observed during
// the run, in observation order.
type ThermalInput struct {
	Bound   uint64   `json:"bound" yaml:"bound"`
	Samples []uint64 `json:"samples" yaml:"samples"`
}

// EffectsInput carries the declared effect set and what was observed.
type EffectsInput struct {
	Declared []string `json:"declared" yaml:"declared"`
	Observed []string `json:"observed" yaml:"observed"`
}

// StateMachineInput describes the contract's state machine.
type StateMachineInput struct {
	Initial     string                       `json:"initial" yaml:"initial"`
	ValidStates []string                     `json:"valid_states" yaml:"valid_states"`
	Transitions map[string]map[string]string `json:"transitions" yaml:"transitions"`
	Events      []string                     `json:"events" yaml:"events"`
}

// ReceiptInput carries the checksums and version for receipt verification.
type ReceiptInput struct {
	Version  uint64 `json:"version" yaml:"version"`
	Declared uint64 `json:"declared_checksum" yaml:"declared_checksum"`
	Computed uint64 `json:"computed_checksum" yaml:"computed_checksum"`
}

// SwarmInput carries scheduled versus executed agent counts.
type SwarmInput struct {
	Scheduled int `json:"scheduled" yaml:"scheduled"`
	Executed  int `json:"executed" yaml:"executed"`
}

// VerificationInput lists the phases the pipeline configuration expects to
// have completed by the time the pipeline check runs.
type VerificationInput struct {
	Expected []string `json:"expected" yaml:"expected"`
}

// LearningInput carries the learner's sample count and current prediction.
type LearningInput struct {
	Samples    int     `json:"samples" yaml:"samples"`
	Prediction float64 `json:"prediction" yaml:"prediction"`
}

// ConsensusInput carries the vote tally for the quorum check.
type ConsensusInput struct {
	Approvals int `json:"approvals" yaml:"approvals"`
	Total     int `json:"total" yaml:"total"`
}

// SnapshotInput carries the restored snapshot version and the expected one.
type SnapshotInput struct {
	SnapshotVersion uint64 `json:"snapshot_version" yaml:"snapshot_version"`
	ExpectedVersion uint64 `json:"expected_version" yaml:"expected_version"`
}

// ProphetInput carries the prophet's τ prediction and its confidence.
type ProphetInput struct {
	PredictedTau float64 `json:"predicted_tau" yaml:"predicted_tau"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// DashboardInput carries the dashboard's aggregate counters.
type DashboardInput struct {
	Total  int `json:"total" yaml:"total"`
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
}

// LoadRun reads and parses a run manifest from disk.
func (l *Loader) LoadRun(path string) (*RunManifest, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return l.ParseRun(data)
}

// ParseRun validates raw YAML against the run manifest schema, then decodes
// it. Labels and effect names are NFC-normalized so visually identical
// spellings compare equal downstream.
func (l *Loader) ParseRun(raw []byte) (*RunManifest, error) {
	if err := validate(l.runSchema, raw, "run manifest"); err != nil {
		return nil, err
	}
	var m RunManifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("run manifest: decode: %w", err)
	}
	normalizeStrings(m.Pipeline)
	if v := m.Phases.Verification; v != nil {
		normalizeStrings(v.Expected)
	}
	if e := m.Phases.Effects; e != nil {
		normalizeStrings(e.Declared)
		normalizeStrings(e.Observed)
	}
	return &m, nil
}

func normalizeStrings(ss []string) {
	for i, s := range ss {
		ss[i] = norm.NFC.String(s)
	}
}
