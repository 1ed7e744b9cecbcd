package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKeyring(t *testing.T) *Keyring {
	t.Helper()
	kr, err := NewKeyring([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return kr
}

// TestTokenRoundTrip verifies a minted token validates and carries the
// receipt fields.
func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tm := NewTokenManager(testKeyring(t), fixedClock{t: now})

	r := Receipt{
		ReceiptID:   "receipt-fixture-1",
		ContractID:  "contract-001",
		Version:     2,
		Declared:    0x1234,
		Computed:    0x1234,
		GeneratedAt: now,
	}

	token, err := tm.Mint(r, time.Hour)
	require.NoError(t, err)

	claims, err := tm.Verify(token, "contract-001")
	require.NoError(t, err)
	assert.Equal(t, "contract-001", claims.ContractID)
	assert.Equal(t, uint64(2), claims.Version)
	assert.Equal(t, uint64(0x1234), claims.Declared)
	assert.True(t, claims.ChecksumOK)
	assert.Equal(t, "receipt-fixture-1", claims.ID)
}

// TestTokenContractBinding verifies a token minted for one contract cannot
// verify under another contract's derived key.
func TestTokenContractBinding(t *testing.T) {
	tm := NewTokenManager(testKeyring(t), fixedClock{t: time.Unix(1700000000, 0)})

	token, err := tm.Mint(Receipt{ReceiptID: "r1", ContractID: "contract-001", Version: 1}, time.Hour)
	require.NoError(t, err)

	_, err = tm.Verify(token, "contract-002")
	require.Error(t, err)
}

func TestTokenTamperDetected(t *testing.T) {
	tm := NewTokenManager(testKeyring(t), fixedClock{t: time.Unix(1700000000, 0)})

	token, err := tm.Mint(Receipt{ReceiptID: "r1", ContractID: "contract-001", Version: 1}, time.Hour)
	require.NoError(t, err)

	mangled := token[:len(token)-4] + "AAAA"
	_, err = tm.Verify(mangled, "contract-001")
	require.Error(t, err)
}

// TestTokenExpiry verifies validation honors the injected clock.
func TestTokenExpiry(t *testing.T) {
	kr := testKeyring(t)
	minted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	token, err := NewTokenManager(kr, fixedClock{t: minted}).
		Mint(Receipt{ReceiptID: "r1", ContractID: "contract-001", Version: 1}, time.Hour)
	require.NoError(t, err)

	later := NewTokenManager(kr, fixedClock{t: minted.Add(2 * time.Hour)})
	_, err = later.Verify(token, "contract-001")
	require.Error(t, err)

	within := NewTokenManager(kr, fixedClock{t: minted.Add(30 * time.Minute)})
	_, err = within.Verify(token, "contract-001")
	require.NoError(t, err)
}
