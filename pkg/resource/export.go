package resource

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Munger/mikro-manager/pkg/routeros"
)

// Format is an export/import serialization format.
type Format string

// Supported formats
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format name from a CLI flag.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (valid: json, csv)", s)
	}
}

// Marshal renders records in the given format. Columns fix the CSV
// column order; when empty they are derived (sorted) from the first
// record. JSON output is indented and key-sorted.
func Marshal(records []routeros.Record, format Format, columns []string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case FormatCSV:
		return marshalCSV(records, columns)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Unmarshal parses records from the given format.
func Unmarshal(data []byte, format Format) ([]routeros.Record, error) {
	switch format {
	case FormatJSON:
		var records []routeros.Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
		return records, nil
	case FormatCSV:
		return unmarshalCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func marshalCSV(records []routeros.Record, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	if len(columns) == 0 {
		for k := range records[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	row := make([]string, len(columns))
	for _, record := range records {
		for i, col := range columns {
			row[i] = record[col]
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func unmarshalCSV(data []byte) ([]routeros.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing csv header: %w", err)
	}

	var records []routeros.Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing csv: %w", err)
		}
		record := make(routeros.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}
