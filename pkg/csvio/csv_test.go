package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"humidorhub_backend/internal/model"
)

func TestWriteAndReadBack(t *testing.T) {
	cigars := []model.Cigar{
		{
			Brand:     "Padron",
			Name:      "1964 Anniversary",
			Shape:     "Torpedo",
			LengthIn:  6.0,
			RingGauge: 52,
			Strength:  model.StrengthFull,
			Wrapper:   "Maduro",
			Origin:    "Nicaragua",
			Price:     18.5,
			Rating:    93,
			Quantity:  4,
		},
		{
			Brand:    "Arturo Fuente",
			Name:     "Hemingway Short Story",
			Quantity: 1,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cigars))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "Padron", parsed[0].Brand)
	assert.Equal(t, 6.0, parsed[0].LengthIn)
	assert.Equal(t, 52, parsed[0].RingGauge)
	assert.Equal(t, model.StrengthFull, parsed[0].Strength)
	assert.Equal(t, 18.5, parsed[0].Price)
	assert.Equal(t, 4, parsed[0].Quantity)
	assert.Equal(t, "Hemingway Short Story", parsed[1].Name)
}

func TestReadMatchesColumnsByName(t *testing.T) {
	// Reordered and unknown columns are fine.
	input := "name,notes,brand,quantity\nEpicure No. 2,my favorite,Hoyo de Monterrey,3\n"

	cigars, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cigars, 1)
	assert.Equal(t, "Hoyo de Monterrey", cigars[0].Brand)
	assert.Equal(t, "Epicure No. 2", cigars[0].Name)
	assert.Equal(t, 3, cigars[0].Quantity)
}

func TestReadBadNumericsFallBack(t *testing.T) {
	input := "brand,name,ring_gauge,price,quantity\nOliva,Serie V,fifty,cheap,\n"

	cigars, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cigars, 1)
	assert.Equal(t, 0, cigars[0].RingGauge)
	assert.Equal(t, 0.0, cigars[0].Price)
	assert.Equal(t, 1, cigars[0].Quantity) // quantity floors at 1
}

func TestReadSkipsBlankRows(t *testing.T) {
	input := "brand,name\nCohiba,Behike\n,\n"

	cigars, err := Read(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, cigars, 1)
}

func TestReadRequiresBrandAndName(t *testing.T) {
	_, err := Read(strings.NewReader("brand,name\nCohiba,\n"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("name\nBehike\n"))
	assert.Error(t, err)
}
