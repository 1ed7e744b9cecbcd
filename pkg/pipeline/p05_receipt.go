package pipeline

import (
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/receipt"
	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// ReceiptGeneration verifies the declared checksum against the independently
// computed one and that the version does not decrease relative to a prior
// receipt in the same context. On success the receipt is retained on the
// context for later verification and finalization.
//
// The retained receipt carries no id or timestamp; phase functions are pure,
// so minting the full audit receipt (uuid, clock) is left to the caller via
// receipt.Generator.
type ReceiptGeneration struct {
	Version  uint64
	Declared uint64
	Computed uint64
}

func (p ReceiptGeneration) Label() Label { return LabelReceiptGeneration }

func (p ReceiptGeneration) Run(ctx *ExecutionContext) PhaseResult {
	if p.Declared != p.Computed {
		return fail(p.Label(), violation.ChecksumMismatch(ctx.contractID, p.Declared, p.Computed))
	}
	if prior, ok := ctx.Receipt(); ok && p.Version < prior.Version {
		return fail(p.Label(), violation.ReceiptVersionMismatch(ctx.contractID, p.Version, prior.Version))
	}

	ctx.receipt = &receipt.Receipt{
		ContractID: ctx.contractID,
		Version:    p.Version,
		Declared:   p.Declared,
		Computed:   p.Computed,
	}
	ctx.RecordPhaseCompletion(p.Label())
	return pass(p.Label())
}

// VerifyReceipt re-checks the receipt retained by the receipt-generation
// phase. A context that never generated one yields MissingReceipt; a
// retained receipt whose checksums disagree yields ChecksumMismatch.
func (c *ExecutionContext) VerifyReceipt() *violation.Violation {
	r, ok := c.Receipt()
	if !ok {
		v := violation.MissingReceipt(c.contractID)
		v.Phase = string(LabelReceiptGeneration)
		return v
	}
	if !r.Valid() {
		v := violation.ChecksumMismatch(c.contractID, r.Declared, r.Computed)
		v.Phase = string(LabelReceiptGeneration)
		return v
	}
	return nil
}
