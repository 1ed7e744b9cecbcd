package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor(id string, pattern int, cat Category, guards ...GuardType) OperatorDescriptor {
	return OperatorDescriptor{
		ID:         id,
		Pattern:    pattern,
		Name:       id,
		Category:   cat,
		Properties: Properties{Deterministic: true, Idempotent: true, TypePreserving: true, Bounded: true},
		MaxLatency: time.Millisecond,
		Guards:     guards,
	}
}

// TestRegistryRegisterAndLookup verifies registration, lookup, and the
// overwrite-by-identifier rule.
func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register(testDescriptor("op.a", 1, CategoryContract, Legality)))

	d, ok := r.Lookup("op.a")
	require.True(t, ok)
	assert.Equal(t, "op.a", d.ID)
	assert.Equal(t, CategoryContract, d.Category)

	_, ok = r.Lookup("op.missing")
	assert.False(t, ok)

	// Re-registering the same identifier overwrites.
	require.NoError(t, r.Register(testDescriptor("op.a", 1, CategoryThermal, Budget)))
	d, ok = r.Lookup("op.a")
	require.True(t, ok)
	assert.Equal(t, CategoryThermal, d.Category)
	assert.Equal(t, 1, r.Len())
}

// TestRegistryRegisterValidation verifies malformed descriptors are rejected.
func TestRegistryRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		desc    OperatorDescriptor
		wantErr error
	}{
		{
			name:    "empty id",
			desc:    testDescriptor("", 1, CategoryContract),
			wantErr: ErrEmptyOperatorID,
		},
		{
			name:    "unknown guard type",
			desc:    testDescriptor("op.a", 1, CategoryContract, GuardType("TELEPATHY")),
			wantErr: ErrUnknownGuard,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tc.desc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	t.Run("nonpositive pattern", func(t *testing.T) {
		r := NewRegistry()
		require.Error(t, r.Register(testDescriptor("op.a", 0, CategoryContract)))
	})
}

// TestRegistryDescriptorImmutability verifies that neither mutating the
// caller's descriptor after Register nor mutating a Lookup result affects
// the registered state.
func TestRegistryDescriptorImmutability(t *testing.T) {
	r := NewRegistry()

	in := testDescriptor("op.a", 1, CategoryContract, Legality)
	require.NoError(t, r.Register(in))
	in.Guards[0] = Recursion

	d, ok := r.Lookup("op.a")
	require.True(t, ok)
	require.Equal(t, []GuardType{Legality}, d.Guards)

	d.Guards[0] = Budget
	d2, ok := r.Lookup("op.a")
	require.True(t, ok)
	assert.Equal(t, []GuardType{Legality}, d2.Guards)
}

// TestRegistryFilters verifies the guard, category, and property filters
// and the canonical List order.
func TestRegistryFilters(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testDescriptor("op.c", 3, CategoryThermal, Chronology, Budget)))
	require.NoError(t, r.Register(testDescriptor("op.a", 1, CategoryContract, Legality)))
	b := testDescriptor("op.b", 2, CategoryContract, Budget)
	b.Properties.Deterministic = false
	require.NoError(t, r.Register(b))

	t.Run("list ordered by pattern", func(t *testing.T) {
		list := r.List()
		require.Len(t, list, 3)
		assert.Equal(t, []string{"op.a", "op.b", "op.c"}, []string{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("by guard", func(t *testing.T) {
		got := r.FilterByGuard(Budget)
		require.Len(t, got, 2)
		assert.Equal(t, "op.b", got[0].ID)
		assert.Equal(t, "op.c", got[1].ID)
		assert.Empty(t, r.FilterByGuard(Recursion))
	})

	t.Run("by category", func(t *testing.T) {
		got := r.FilterByCategory(CategoryContract)
		require.Len(t, got, 2)
		assert.Equal(t, "op.a", got[0].ID)
	})

	t.Run("by property", func(t *testing.T) {
		got := r.FilterByProperty(func(p Properties) bool { return !p.Deterministic })
		require.Len(t, got, 1)
		assert.Equal(t, "op.b", got[0].ID)
	})

	t.Run("count by category", func(t *testing.T) {
		counts := r.CountByCategory()
		assert.Equal(t, map[Category]int{CategoryContract: 2, CategoryThermal: 1}, counts)
	})
}

// TestDefaultRegistry verifies the built-in catalog: one operator per
// verification family with contiguous pattern numbers, and every guard type
// in use.
func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	list := r.List()
	require.Len(t, list, 12)

	for i, d := range list {
		assert.Equal(t, i+1, d.Pattern, "operator %s out of order", d.ID)
		assert.NotEmpty(t, d.Guards, "operator %s has no guards", d.ID)
		assert.Greater(t, d.MaxLatency, time.Duration(0))
	}

	for _, g := range AllGuardTypes() {
		assert.NotEmpty(t, r.FilterByGuard(g), "guard type %s unused", g)
	}

	t.Run("guard requirements queryable", func(t *testing.T) {
		d, ok := r.Lookup("thermal.verify_monotonicity")
		require.True(t, ok)
		assert.True(t, d.RequiresGuard(Chronology))
		assert.True(t, d.RequiresGuard(Budget))
		assert.False(t, d.RequiresGuard(Recursion))
	})

	t.Run("receipt generation is not deterministic", func(t *testing.T) {
		got := r.FilterByProperty(func(p Properties) bool { return !p.Deterministic })
		require.Len(t, got, 1)
		assert.Equal(t, "receipt.generate", got[0].ID)
	})
}
