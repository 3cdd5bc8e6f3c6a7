package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientListAcceptsStringOrArray(t *testing.T) {
	var req GenerateRecipeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"ingredients":"egg, flour ,, milk"}`), &req))
	assert.Equal(t, []string{"egg", "flour", "milk"}, req.Ingredients.Normalized())

	require.NoError(t, json.Unmarshal([]byte(`{"ingredients":["tomato"," basil "]}`), &req))
	assert.Equal(t, []string{"tomato", "basil"}, req.Ingredients.Normalized())

	assert.Error(t, json.Unmarshal([]byte(`{"ingredients":42}`), &req))
}

func TestIngredientListMissingIsEmpty(t *testing.T) {
	var req GenerateRecipeRequest
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.Empty(t, req.Ingredients.Normalized())
}
