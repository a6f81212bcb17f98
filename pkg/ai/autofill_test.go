package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCigarDetailsPlainJSON(t *testing.T) {
	content := `{
		"shape": "Robusto",
		"length_in": 5.0,
		"ring_gauge": 50,
		"strength": "medium",
		"wrapper": "Connecticut Shade",
		"binder": "Dominican",
		"filler": "Dominican, Nicaraguan",
		"origin": "Dominican Republic",
		"tasting_notes": ["cedar", "cream", "almond"],
		"price_range": "$8-$12"
	}`

	details, err := ParseCigarDetails(content)
	require.NoError(t, err)
	assert.Equal(t, "Robusto", details.Shape)
	assert.Equal(t, 5.0, details.LengthIn)
	assert.Equal(t, 50, details.RingGauge)
	assert.Equal(t, "Medium", details.Strength)
	assert.Equal(t, []string{"cedar", "cream", "almond"}, details.TastingNotes)
}

func TestParseCigarDetailsMarkdownFences(t *testing.T) {
	content := "```json\n{\"shape\": \"Toro\", \"ring_gauge\": 52, \"strength\": \"Full\"}\n```"

	details, err := ParseCigarDetails(content)
	require.NoError(t, err)
	assert.Equal(t, "Toro", details.Shape)
	assert.Equal(t, 52, details.RingGauge)
	assert.Equal(t, "Full", details.Strength)
}

func TestParseCigarDetailsSurroundingProse(t *testing.T) {
	content := `Here are the specifications you asked for:
{"shape": "Churchill", "length_in": 7, "origin": "Cuba"}
Let me know if you need anything else.`

	details, err := ParseCigarDetails(content)
	require.NoError(t, err)
	assert.Equal(t, "Churchill", details.Shape)
	assert.Equal(t, "Cuba", details.Origin)
}

func TestParseCigarDetailsNormalizes(t *testing.T) {
	details, err := ParseCigarDetails(`{"strength": "medium to full", "length_in": -1, "ring_gauge": -5}`)
	require.NoError(t, err)
	assert.Equal(t, "Medium-Full", details.Strength)
	assert.Equal(t, 0.0, details.LengthIn)
	assert.Equal(t, 0, details.RingGauge)
	assert.NotNil(t, details.TastingNotes)
	assert.Empty(t, details.TastingNotes)
}

func TestParseCigarDetailsUnknownStrengthDropped(t *testing.T) {
	details, err := ParseCigarDetails(`{"strength": "extra bold"}`)
	require.NoError(t, err)
	assert.Equal(t, "", details.Strength)
}

func TestParseCigarDetailsNoJSON(t *testing.T) {
	_, err := ParseCigarDetails("Sorry, I couldn't find that cigar.")
	assert.Error(t, err)
}

func TestRenderAutofillPrompt(t *testing.T) {
	prompt, err := renderAutofillPrompt("Padron", "1964 Anniversary")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Brand: Padron")
	assert.Contains(t, prompt, "Name: 1964 Anniversary")
}
