// Package receipt creates and verifies checksum receipts for verification
// runs. A receipt binds a version number to a declared checksum and an
// independently computed one; it is valid iff the two agree. Checksums are
// 64-bit truncations of SHA-256 over RFC 8785 canonical JSON, so the same
// payload always yields the same checksum regardless of field order.
package receipt

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
)

// Clock provides receipt timestamps. Inject a fixed clock in tests; the
// default is wall-clock time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Receipt is the integrity record minted once per verification run at the
// receipt-generation phase. Immutable after creation.
type Receipt struct {
	ReceiptID  string `json:"receipt_id"`
	ContractID string `json:"contract_id"`
	Version    uint64 `json:"version"`
	// Checksums carry the ,string option: they span the full uint64 range,
	// which JSON number consumers truncate to IEEE doubles.
	Declared    uint64    `json:"declared_checksum,string"`
	Computed    uint64    `json:"computed_checksum,string"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Valid reports whether the declared checksum matches the computed one.
func (r Receipt) Valid() bool {
	return r.Declared == r.Computed
}

// Checksum returns the checksum of v: JSON-encode, canonicalize per RFC 8785,
// SHA-256, then take the first 8 digest bytes big-endian.
func Checksum(v any) (uint64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("checksum: marshal payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return 0, fmt.Errorf("checksum: canonicalize payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return binary.BigEndian.Uint64(sum[:8]), nil
}

// Generator mints receipts. The uuid source and clock are injectable so
// tests can pin both.
type Generator struct {
	clock Clock
	newID func() string
}

// NewGenerator creates a generator. A nil clock falls back to wall-clock
// time.
func NewGenerator(clock Clock) *Generator {
	if clock == nil {
		clock = wallClock{}
	}
	return &Generator{
		clock: clock,
		newID: func() string { return uuid.New().String() },
	}
}

// Generate mints a receipt for contractID at version, recording the declared
// checksum alongside a checksum computed over payload.
func (g *Generator) Generate(contractID string, version, declared uint64, payload any) (Receipt, error) {
	computed, err := Checksum(payload)
	if err != nil {
		return Receipt{}, err
	}
	return g.Assemble(contractID, version, declared, computed), nil
}

// Assemble mints a receipt from an already-computed checksum, for callers
// whose computed value arrives from an independent source.
func (g *Generator) Assemble(contractID string, version, declared, computed uint64) Receipt {
	return Receipt{
		ReceiptID:   g.newID(),
		ContractID:  contractID,
		Version:     version,
		Declared:    declared,
		Computed:    computed,
		GeneratedAt: g.clock.Now().UTC(),
	}
}
