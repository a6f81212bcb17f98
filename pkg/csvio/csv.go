package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"humidorhub_backend/internal/model"
)

// Header is the canonical cigar CSV column set. Export always writes these
// columns in this order; import matches columns by name, so reordered or
// extra columns in user files are fine.
var Header = []string{
	"brand", "name", "shape", "length_in", "ring_gauge", "strength",
	"wrapper", "binder", "filler", "origin", "price", "rating", "quantity",
}

// Write streams cigars as CSV.
func Write(w io.Writer, cigars []model.Cigar) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("could not write CSV header: %w", err)
	}

	for _, c := range cigars {
		row := []string{
			c.Brand,
			c.Name,
			c.Shape,
			formatFloat(c.LengthIn),
			strconv.Itoa(c.RingGauge),
			string(c.Strength),
			c.Wrapper,
			c.Binder,
			c.Filler,
			c.Origin,
			formatFloat(c.Price),
			strconv.Itoa(c.Rating),
			strconv.Itoa(c.Quantity),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("could not write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read parses a cigar CSV. Brand and name are required per row; numeric
// fields that fail to parse fall back to zero so a half-filled spreadsheet
// still imports.
func Read(r io.Reader) ([]model.Cigar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read CSV header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["brand"]; !ok {
		return nil, fmt.Errorf("CSV is missing the required 'brand' column")
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("CSV is missing the required 'name' column")
	}

	var cigars []model.Cigar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		brand := get("brand")
		name := get("name")
		if brand == "" && name == "" {
			continue // blank line
		}
		if brand == "" || name == "" {
			return nil, fmt.Errorf("row %d: brand and name are required", line)
		}

		quantity := parseInt(get("quantity"))
		if quantity <= 0 {
			quantity = 1
		}

		cigars = append(cigars, model.Cigar{
			Brand:     brand,
			Name:      name,
			Shape:     get("shape"),
			LengthIn:  parseFloat(get("length_in")),
			RingGauge: parseInt(get("ring_gauge")),
			Strength:  model.CigarStrength(get("strength")),
			Wrapper:   get("wrapper"),
			Binder:    get("binder"),
			Filler:    get("filler"),
			Origin:    get("origin"),
			Price:     parseFloat(get("price")),
			Rating:    parseInt(get("rating")),
			Quantity:  quantity,
		})
	}

	return cigars, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
