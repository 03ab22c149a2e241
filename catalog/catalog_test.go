package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jurgenvdlecq/seatemail/model"
)

func testEntries() []model.CatalogEntry {
	return []model.CatalogEntry{
		{Brand: "SEAT", Model: "Ibiza", Engine: "1.0 TSI 95pk", StartingPrice: *model.MustAmount("23990")},
		{Brand: "SEAT", Model: "Leon", Engine: "1.5 eTSI 150pk", StartingPrice: *model.MustAmount("34490")},
		{Brand: "CUPRA", Model: "Born", Engine: "58 kWh", StartingPrice: *model.MustAmount("39990")},
		{Brand: "seat", Model: "ibiza", Engine: "1.0 tsi 95pk", StartingPrice: *model.MustAmount("1")},
	}
}

func TestLookup(t *testing.T) {
	c := New(testEntries())

	t.Run("exact match", func(t *testing.T) {
		e, err := c.Lookup("CUPRA", "Born", "58 kWh")
		require.NoError(t, err)
		assert.Equal(t, "39990.00", e.StartingPrice.String())
	})

	t.Run("case insensitive and trimmed", func(t *testing.T) {
		e, err := c.Lookup("  seat ", "LEON", "1.5 etsi 150PK")
		require.NoError(t, err)
		assert.Equal(t, "Leon", e.Model)
	})

	t.Run("first entry wins", func(t *testing.T) {
		e, err := c.Lookup("seat", "ibiza", "1.0 TSI 95pk")
		require.NoError(t, err)
		assert.Equal(t, "23990.00", e.StartingPrice.String())
	})

	t.Run("no partial match", func(t *testing.T) {
		_, err := c.Lookup("SEAT", "Ibiza", "1.0 TSI")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("blank field", func(t *testing.T) {
		_, err := c.Lookup("SEAT", " ", "1.0 TSI 95pk")
		assert.ErrorIs(t, err, ErrIncompleteQuery)
	})

	t.Run("nil catalog", func(t *testing.T) {
		var empty *Catalog
		_, err := empty.Lookup("SEAT", "Ibiza", "1.0 TSI 95pk")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 0, empty.Len())
	})
}

func TestNewCopiesEntries(t *testing.T) {
	entries := testEntries()
	c := New(entries)
	entries[0].Brand = "Changed"

	assert.Equal(t, "SEAT", c.Entries()[0].Brand)

	out := c.Entries()
	out[1].Brand = "Changed"
	assert.Equal(t, "SEAT", c.Entries()[1].Brand)
}

func TestSuggest(t *testing.T) {
	c := New(testEntries())

	t.Run("typo in engine", func(t *testing.T) {
		got := c.Suggest("SEAT", "Leon", "1.5 eTSI 150", 3)
		require.NotEmpty(t, got)
		assert.Equal(t, "Leon", got[0].Entry.Model)
	})

	t.Run("sorted by distance", func(t *testing.T) {
		got := c.Suggest("SEAT", "Ibiza", "1.0 TSI 95", 5)
		require.GreaterOrEqual(t, len(got), 2)
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got := c.Suggest("SEAT", "Ibiza", "1.0 TSI 95", 1)
		assert.Len(t, got, 1)
	})

	t.Run("nothing similar", func(t *testing.T) {
		assert.Empty(t, c.Suggest("Volvo", "XC90", "T8 Recharge", 3))
	})

	t.Run("empty query", func(t *testing.T) {
		assert.Nil(t, c.Suggest("", "", "", 3))
	})
}
