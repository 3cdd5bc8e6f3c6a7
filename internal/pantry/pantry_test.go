package pantry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressGate(t *testing.T) {
	l := &List{}
	names := []string{"egg", "flour", "milk", "butter", "sugar", "salt"}
	wantProgress := []int{20, 40, 60, 80, 100, 100}

	assert.Equal(t, 0, l.Progress())
	assert.False(t, l.Ready())
	assert.Equal(t, "0/5", l.Status())

	for i, name := range names {
		require.NoError(t, l.Add(name))
		assert.Equal(t, wantProgress[i], l.Progress(), name)
		if i < 4 {
			assert.False(t, l.Ready())
			assert.Equal(t, string(rune('0'+i+1))+"/5", l.Status())
		} else {
			assert.True(t, l.Ready())
			assert.Equal(t, "ready", l.Status())
		}
	}
}

func TestAddValidation(t *testing.T) {
	l := &List{}

	assert.ErrorIs(t, l.Add("   "), ErrEmptyIngredient)
	assert.ErrorIs(t, l.Add("eggs2"), ErrInvalidIngredient)
	assert.ErrorIs(t, l.Add("salt & pepper"), ErrInvalidIngredient)

	require.NoError(t, l.Add("  sun-dried tomato "))
	assert.Equal(t, []string{"sun-dried tomato"}, l.Items())

	assert.ErrorIs(t, l.Add("sun-dried tomato"), ErrDuplicateIngredient)
	assert.NoError(t, l.Add("Sun-dried tomato"), "dedup is case-sensitive")
	assert.Equal(t, 2, l.Len())
}

func TestRemove(t *testing.T) {
	l := NewList("egg", "flour", "milk")
	assert.True(t, l.Remove("flour"))
	assert.False(t, l.Remove("flour"))
	assert.Equal(t, []string{"egg", "milk"}, l.Items())
}

func TestItemsReturnsCopy(t *testing.T) {
	l := NewList("egg")
	items := l.Items()
	items[0] = "changed"
	assert.Equal(t, []string{"egg"}, l.Items())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("olive oil"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("1 cup rice"))
}

func TestFilter(t *testing.T) {
	type recipe struct {
		title string
		tags  []string
	}
	recipes := []recipe{
		{"Garlic Chicken", []string{"chicken", "garlic"}},
		{"Tomato Soup", []string{"tomato", "basil"}},
		{"Basil Pesto", []string{"basil", "pine nut"}},
	}
	fields := func(r recipe) []string { return append([]string{r.title}, r.tags...) }

	assert.Len(t, Filter(recipes, "", fields), 3)
	assert.Len(t, Filter(recipes, "BASIL", fields), 2)
	got := Filter(recipes, "chick", fields)
	require.Len(t, got, 1)
	assert.Equal(t, "Garlic Chicken", got[0].title)
	assert.Empty(t, Filter(recipes, "lamb", fields))
}
