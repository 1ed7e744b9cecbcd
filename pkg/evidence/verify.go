package evidence

import (
	"bytes"
	"context"
	"fmt"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/pipeline"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// VerifyReport is the structured output of offline bundle verification.
type VerifyReport struct {
	Digest     string        `json:"digest"`
	Verified   bool          `json:"verified"`
	Checks     []CheckResult `json:"checks"`
	IssueCount int           `json:"issue_count"`
	Summary    string        `json:"summary"`
}

// CheckResult is one named verification check.
type CheckResult struct {
	Name   string `json:"name"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// VerifyArchived fetches a bundle from the archive and verifies it. The
// error covers retrieval only; verification findings live in the report.
func VerifyArchived(ctx context.Context, a Archive, digest string) (*VerifyReport, error) {
	data, err := a.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	return Verify(data, digest), nil
}

// Verify runs every offline check against raw bundle bytes. wantDigest may
// be empty to skip the content-address check.
func Verify(data []byte, wantDigest string) *VerifyReport {
	r := &VerifyReport{Digest: wantDigest, Verified: true}

	if wantDigest != "" {
		got := Digest(data)
		if got != wantDigest {
			r.add(fail("digest", fmt.Sprintf("content hashes to %s, claimed %s", got, wantDigest)))
		} else {
			r.add(pass("digest", "content address matches"))
		}
	}

	b, err := Decode(data)
	if err != nil {
		r.add(fail("format", err.Error()))
		return r.finish()
	}
	if b.FormatVersion != BundleFormatVersion {
		r.add(fail("format", fmt.Sprintf("format version %d, supported %d", b.FormatVersion, BundleFormatVersion)))
		return r.finish()
	}
	r.add(pass("format", "bundle decodes, format version supported"))

	r.add(checkStructure(b))
	r.add(checkCanonicalEncoding(b, data))
	r.add(checkPhaseOrder(b))
	r.add(checkFailFastShape(b))
	r.add(checkVerdictConsistency(b))
	if b.Violation != nil {
		r.add(checkViolationKind(b))
	}
	if b.Receipt != nil {
		r.add(checkReceiptChecksum(b))
		r.add(checkReceiptBinding(b))
	}

	return r.finish()
}

func checkStructure(b Bundle) CheckResult {
	const name = "structure"
	if b.RunID == "" {
		return fail(name, "missing run_id")
	}
	if b.ContractID == "" {
		return fail(name, "missing contract_id")
	}
	if b.Verdict != "PASS" && b.Verdict != "FAIL" {
		return fail(name, fmt.Sprintf("verdict %q, want PASS or FAIL", b.Verdict))
	}
	// A run refused before any phase executed carries a violation but no
	// phase records; a run that stalled at finalization carries the
	// missing labels instead. Anything else must record phases.
	if len(b.Phases) == 0 && b.Violation == nil && len(b.Incomplete) == 0 {
		return fail(name, "no phase records")
	}
	return pass(name, "required fields present")
}

// checkCanonicalEncoding re-encodes the decoded bundle and compares bytes,
// so a bundle archived in non-canonical form is flagged even when its
// digest is internally consistent.
func checkCanonicalEncoding(b Bundle, data []byte) CheckResult {
	const name = "canonical_encoding"
	canonical, err := Encode(b)
	if err != nil {
		return fail(name, err.Error())
	}
	if !bytes.Equal(canonical, data) {
		return fail(name, "bundle bytes are not RFC 8785 canonical JSON")
	}
	return pass(name, "bundle is canonical JSON")
}

func checkPhaseOrder(b Bundle) CheckResult {
	const name = "phase_order"
	ordinals := make(map[string]int, pipeline.PipelineSize)
	for i, l := range pipeline.AllLabels() {
		ordinals[string(l)] = i + 1
	}
	prev := 0
	for _, p := range b.Phases {
		ord, known := ordinals[p.Label]
		if !known {
			return fail(name, fmt.Sprintf("unknown phase label %q", p.Label))
		}
		if ord <= prev {
			return fail(name, fmt.Sprintf("phase %q out of order", p.Label))
		}
		prev = ord
	}
	return pass(name, "phases in canonical order")
}

// checkFailFastShape enforces the engine's stop-at-first-violation shape:
// only the final recorded phase may have failed.
func checkFailFastShape(b Bundle) CheckResult {
	const name = "fail_fast_shape"
	for i, p := range b.Phases {
		if !p.Passed && i != len(b.Phases)-1 {
			return fail(name, fmt.Sprintf("phase %q failed but later phases ran", p.Label))
		}
	}
	return pass(name, "no phases recorded after a failure")
}

func checkVerdictConsistency(b Bundle) CheckResult {
	const name = "verdict_consistency"
	failed := len(b.Phases) > 0 && !b.Phases[len(b.Phases)-1].Passed

	switch b.Verdict {
	case "FAIL":
		switch {
		case b.Violation != nil:
			if len(b.Phases) == 0 {
				// Refused before any phase ran, e.g. a pipeline
				// declaring the wrong number of phases.
				break
			}
			if !failed {
				return fail(name, "verdict FAIL but every phase passed")
			}
			if last := b.Phases[len(b.Phases)-1].Label; b.Violation.Phase != last {
				return fail(name, fmt.Sprintf("violation phase %q, last recorded phase %q", b.Violation.Phase, last))
			}
		case len(b.Incomplete) > 0:
			// Stalled at finalization: every recorded phase passed but
			// required phases never ran.
			if failed {
				return fail(name, "missing required phases recorded alongside a failed phase")
			}
		default:
			return fail(name, "verdict FAIL without a violation or missing phases")
		}
	case "PASS":
		if b.Violation != nil {
			return fail(name, "verdict PASS with a violation attached")
		}
		if len(b.Incomplete) > 0 {
			return fail(name, "verdict PASS with missing required phases")
		}
		if failed {
			return fail(name, "verdict PASS but a phase failed")
		}
	}
	return pass(name, "verdict matches phase outcomes")
}

func checkViolationKind(b Bundle) CheckResult {
	const name = "violation_kind"
	for _, k := range violation.AllKinds() {
		if b.Violation.Kind == k {
			return pass(name, fmt.Sprintf("kind %s is in the closed taxonomy", k))
		}
	}
	return fail(name, fmt.Sprintf("kind %q is not a known violation kind", b.Violation.Kind))
}

func checkReceiptChecksum(b Bundle) CheckResult {
	const name = "receipt_checksum"
	if !b.Receipt.Valid() {
		return fail(name, fmt.Sprintf("declared checksum 0x%x, computed 0x%x", b.Receipt.Declared, b.Receipt.Computed))
	}
	return pass(name, "declared and computed checksums agree")
}

func checkReceiptBinding(b Bundle) CheckResult {
	const name = "receipt_binding"
	if b.Receipt.ContractID != b.ContractID {
		return fail(name, fmt.Sprintf("receipt bound to %q, bundle for %q", b.Receipt.ContractID, b.ContractID))
	}
	return pass(name, "receipt bound to this contract")
}

func (r *VerifyReport) add(c CheckResult) {
	r.Checks = append(r.Checks, c)
}

func (r *VerifyReport) finish() *VerifyReport {
	failed := 0
	for _, c := range r.Checks {
		if !c.Pass {
			failed++
		}
	}
	r.IssueCount = failed
	if failed > 0 {
		r.Verified = false
		r.Summary = fmt.Sprintf("FAIL: %d/%d checks failed", failed, len(r.Checks))
	} else {
		r.Summary = fmt.Sprintf("PASS: %d/%d checks passed", len(r.Checks), len(r.Checks))
	}
	return r
}

func pass(name, detail string) CheckResult {
	return CheckResult{Name: name, Pass: true, Detail: detail}
}

func fail(name, reason string) CheckResult {
	return CheckResult{Name: name, Pass: false, Reason: reason}
}
