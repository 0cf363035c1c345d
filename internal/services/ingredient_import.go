package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
)

// ParseIngredientRecords reads a catalog file. format is "json" (an array of
// {"name", "measurement_unit"} objects) or "csv" (name,unit rows, no header).
func ParseIngredientRecords(r io.Reader, format string) ([]IngredientRecord, error) {
	switch strings.ToLower(format) {
	case "json":
		var records []IngredientRecord
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode ingredient json: %w", err)
		}
		return records, nil
	case "csv":
		return parseIngredientCSV(r)
	default:
		return nil, fmt.Errorf("unsupported ingredient format %q (supported: json, csv)", format)
	}
}

func parseIngredientCSV(r io.Reader) ([]IngredientRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var records []IngredientRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ingredient csv: %w", err)
		}
		records = append(records, IngredientRecord{Name: row[0], MeasurementUnit: row[1]})
	}
	return records, nil
}
