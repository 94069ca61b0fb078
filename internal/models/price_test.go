package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The string/number distinction drives the parsing path downstream, so it
// has to survive a JSON roundtrip untouched.
func TestPriceJSONKeepsRepresentation(t *testing.T) {
	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"Rs. 200"`), &p))
	assert.False(t, p.IsNumber)
	assert.Equal(t, "Rs. 200", p.Text)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `"Rs. 200"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`45.5`), &p))
	assert.True(t, p.IsNumber)
	assert.Equal(t, 45.5, p.Number)

	out, err = json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `45.5`, string(out))
}

func TestPriceJSONRejectsObjects(t *testing.T) {
	var p Price
	assert.Error(t, json.Unmarshal([]byte(`{"amount": 10}`), &p))
}

func TestPriceString(t *testing.T) {
	assert.Equal(t, "Rs. 1,250", PriceFromString("Rs. 1,250").String())
	assert.Equal(t, "45.5", PriceFromNumber(45.5).String())
}
