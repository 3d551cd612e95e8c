package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV reads an uploaded inventory file. The header must contain name,
// quantity and expiry_date; low_threshold is optional and defaults later.
func ParseCSV(r io.Reader) ([]ImportRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"name", "quantity", "expiry_date"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("file must contain 'name', 'quantity', and 'expiry_date' fields")
		}
	}

	var records []ImportRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(row[cols["quantity"]]))
		if err != nil {
			return nil, fmt.Errorf("csv line %d: quantity must be an integer", line)
		}
		rec := ImportRecord{
			Name:       row[cols["name"]],
			Quantity:   quantity,
			ExpiryDate: strings.TrimSpace(row[cols["expiry_date"]]),
		}
		if idx, ok := cols["low_threshold"]; ok && idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			threshold, err := strconv.Atoi(strings.TrimSpace(row[idx]))
			if err != nil {
				return nil, fmt.Errorf("csv line %d: low_threshold must be an integer", line)
			}
			rec.LowThreshold = threshold
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV renders export records with the fixed column order the import
// side expects.
func WriteCSV(w io.Writer, records []ExportRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"name", "quantity", "expiry_date", "low_threshold"}); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.Name,
			strconv.Itoa(rec.Quantity),
			rec.ExpiryDate,
			strconv.Itoa(rec.LowThreshold),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
