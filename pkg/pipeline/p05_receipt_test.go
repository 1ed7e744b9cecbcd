package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanchatmangpt/chicago-tdd-tools-sub000/pkg/violation"
)

// TestReceiptGeneration verifies the checksum invariant, version
// monotonicity across receipts in one context, and receipt retention.
func TestReceiptGeneration(t *testing.T) {
	t.Run("matching checksums retain a valid receipt", func(t *testing.T) {
		ctx, _ := New("contract-001")

		res := ReceiptGeneration{Version: 1, Declared: 0x1234, Computed: 0x1234}.Run(ctx)
		require.True(t, res.OK())

		r, ok := ctx.Receipt()
		require.True(t, ok)
		assert.True(t, r.Valid())
		assert.Equal(t, "contract-001", r.ContractID)
		assert.Equal(t, uint64(1), r.Version)
	})

	t.Run("mismatched checksums", func(t *testing.T) {
		ctx, _ := New("contract-001")

		res := ReceiptGeneration{Version: 1, Declared: 0x1234, Computed: 0x9999}.Run(ctx)
		require.False(t, res.OK())
		assert.Equal(t, violation.KindChecksumMismatch, res.Violation.Kind)
		assert.Equal(t, "0x1234", res.Violation.Expected)
		assert.Equal(t, "0x9999", res.Violation.Actual)

		_, ok := ctx.Receipt()
		assert.False(t, ok)
	})

	t.Run("version may repeat but not decrease", func(t *testing.T) {
		ctx, _ := New("contract-001")
		require.True(t, ReceiptGeneration{Version: 3, Declared: 1, Computed: 1}.Run(ctx).OK())
		require.True(t, ReceiptGeneration{Version: 3, Declared: 2, Computed: 2}.Run(ctx).OK())

		res := ReceiptGeneration{Version: 2, Declared: 3, Computed: 3}.Run(ctx)
		require.False(t, res.OK())
		assert.Equal(t, violation.KindReceiptVersionMismatch, res.Violation.Kind)

		// The failed call did not replace the retained receipt.
		r, ok := ctx.Receipt()
		require.True(t, ok)
		assert.Equal(t, uint64(3), r.Version)
		assert.Equal(t, uint64(2), r.Declared)
	})

	t.Run("checksum mismatch reported before version regression", func(t *testing.T) {
		ctx, _ := New("contract-001")
		require.True(t, ReceiptGeneration{Version: 3, Declared: 1, Computed: 1}.Run(ctx).OK())

		res := ReceiptGeneration{Version: 2, Declared: 0x1234, Computed: 0x9999}.Run(ctx)
		require.False(t, res.OK())
		assert.Equal(t, violation.KindChecksumMismatch, res.Violation.Kind)
	})
}

// TestVerifyReceipt verifies the retained-receipt re-check and the
// missing-receipt case.
func TestVerifyReceipt(t *testing.T) {
	t.Run("no receipt generated", func(t *testing.T) {
		ctx, _ := New("contract-001")

		v := ctx.VerifyReceipt()
		require.NotNil(t, v)
		assert.Equal(t, violation.KindMissingReceipt, v.Kind)
		assert.Equal(t, string(LabelReceiptGeneration), v.Phase)
	})

	t.Run("retained receipt verifies", func(t *testing.T) {
		ctx, _ := New("contract-001")
		require.True(t, ReceiptGeneration{Version: 1, Declared: 0x1234, Computed: 0x1234}.Run(ctx).OK())
		assert.Nil(t, ctx.VerifyReceipt())
	})
}
