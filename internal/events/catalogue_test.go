package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsCopy(t *testing.T) {
	a := Seed()
	require.Len(t, a, 3)
	a[0].Keywords[0] = "mutated"
	a[0].Title = "mutated"
	b := Seed()
	assert.Equal(t, "ai", b[0].Keywords[0])
	assert.Equal(t, "AI Summit 2024", b[0].Title)
}

func TestFilter(t *testing.T) {
	all := Seed()

	assert.Len(t, Filter(all, "", ""), 3)
	assert.Len(t, Filter(all, "", AllCities), 3)

	boston := Filter(all, "", "boston")
	require.Len(t, boston, 1)
	assert.Equal(t, 3, boston[0].ID)

	sf := Filter(all, "", "san-francisco")
	require.Len(t, sf, 1)
	assert.Equal(t, 1, sf[0].ID)

	nlp := Filter(all, "transformers", "")
	require.Len(t, nlp, 1)
	assert.Equal(t, 2, nlp[0].ID)

	assert.Empty(t, Filter(all, "transformers", "boston"))

	workshop := Filter(all, "hands-on workshop", "")
	require.Len(t, workshop, 1)
	assert.Equal(t, 2, workshop[0].ID)
}

func TestDeslugCity(t *testing.T) {
	assert.Equal(t, "new york", DeslugCity("new-york"))
	assert.Equal(t, "san francisco", DeslugCity(" san-francisco "))
	assert.False(t, CityFilterActive("all"))
	assert.False(t, CityFilterActive(""))
	assert.True(t, CityFilterActive("london"))
}
