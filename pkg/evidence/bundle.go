package evidence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/receipt"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// BundleFormatVersion is bumped on incompatible bundle layout changes.
const BundleFormatVersion = 1

// Bundle is the evidence captured for one verification run. It is
// self-contained: everything an offline auditor needs to re-judge the run.
type Bundle struct {
	FormatVersion int                  `json:"format_version"`
	RunID         string               `json:"run_id"`
	ContractID    string               `json:"contract_id"`
	Verdict       string               `json:"verdict"`
	Phases        []PhaseRecord        `json:"phases"`
	Incomplete    []string             `json:"incomplete,omitempty"`
	Violation     *violation.Violation `json:"violation,omitempty"`
	Receipt       *receipt.Receipt     `json:"receipt,omitempty"`
	StartedAt     time.Time            `json:"started_at"`
	FinishedAt    time.Time            `json:"finished_at"`
}

// PhaseRecord is one phase outcome inside a bundle.
type PhaseRecord struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Encode serializes the bundle as RFC 8785 canonical JSON, so identical
// runs always produce identical bytes and digests.
func Encode(b Bundle) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize bundle: %w", err)
	}
	return canonical, nil
}

// Decode parses bundle bytes.
func Decode(data []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}
