package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	t time.Time
}

func (f fixedClock) Now() time.Time { return f.t }

// TestChecksumDeterministic verifies the canonicalized checksum ignores
// field declaration order and is stable across calls.
func TestChecksumDeterministic(t *testing.T) {
	type payloadAB struct {
		A int    `json:"a"`
		B string `json:"b"`
	}
	type payloadBA struct {
		B string `json:"b"`
		A int    `json:"a"`
	}

	first, err := Checksum(payloadAB{A: 7, B: "effects"})
	require.NoError(t, err)
	again, err := Checksum(payloadAB{A: 7, B: "effects"})
	require.NoError(t, err)
	reordered, err := Checksum(payloadBA{B: "effects", A: 7})
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, first, reordered)

	other, err := Checksum(payloadAB{A: 8, B: "effects"})
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestChecksumRejectsUnmarshalable(t *testing.T) {
	_, err := Checksum(make(chan int))
	require.Error(t, err)
}

// TestReceiptValid verifies validity is exactly declared == computed.
func TestReceiptValid(t *testing.T) {
	tests := []struct {
		name     string
		declared uint64
		computed uint64
		want     bool
	}{
		{name: "matching checksums", declared: 0x1234, computed: 0x1234, want: true},
		{name: "mismatched checksums", declared: 0x1234, computed: 0x9999, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := Receipt{Version: 1, Declared: tc.declared, Computed: tc.computed}
			assert.Equal(t, tc.want, r.Valid())
		})
	}
}

// TestGeneratorGenerate verifies minted receipts carry the injected id and
// clock values and a checksum computed over the payload.
func TestGeneratorGenerate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	g := NewGenerator(fixedClock{t: now})
	g.newID = func() string { return "receipt-fixture-1" }

	payload := map[string]any{"phase": "receipt_generation", "ok": true}
	want, err := Checksum(payload)
	require.NoError(t, err)

	r, err := g.Generate("contract-001", 3, want, payload)
	require.NoError(t, err)
	assert.Equal(t, "receipt-fixture-1", r.ReceiptID)
	assert.Equal(t, "contract-001", r.ContractID)
	assert.Equal(t, uint64(3), r.Version)
	assert.Equal(t, now, r.GeneratedAt)
	assert.True(t, r.Valid())
}

func TestGeneratorAssemble(t *testing.T) {
	g := NewGenerator(fixedClock{t: time.Unix(1700000000, 0)})

	r := g.Assemble("contract-001", 1, 0x1234, 0x9999)
	assert.False(t, r.Valid())
	assert.NotEmpty(t, r.ReceiptID)
}

// TestKeyringDerivation verifies per-contract keys are deterministic and
// contract-specific.
func TestKeyringDerivation(t *testing.T) {
	master := []byte("0123456789abcdef0123456789abcdef")

	kr, err := NewKeyring(master)
	require.NoError(t, err)

	k1, err := kr.KeyFor("contract-001")
	require.NoError(t, err)
	k1again, err := kr.KeyFor("contract-001")
	require.NoError(t, err)
	k2, err := kr.KeyFor("contract-002")
	require.NoError(t, err)

	assert.Equal(t, k1, k1again)
	assert.NotEqual(t, k1, k2)
	assert.Len(t, k1, keySize)

	_, err = kr.KeyFor("")
	require.Error(t, err)

	_, err = NewKeyring([]byte("short"))
	require.Error(t, err)
}
