package batchverify

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one signed message and the address expected to have signed it.
type Record struct {
	Message   string `json:"message"`
	Signature string `json:"signature" validate:"required"`
	Signer    string `json:"signer" validate:"required"`
}

// RecordParser defines the interface for parsing records from various sources.
type RecordParser interface {
	// ParseRecords parses records from a source and returns them.
	ParseRecords(source string) ([]Record, error)
}

// ParserFor returns the parser for a format name, "json" or "csv".  An empty
// format is inferred from the file extension of path.
func ParserFor(format, path string) (RecordParser, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}, nil
	case "csv":
		return &CSVParser{}, nil
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

// JSONParser parses records from JSON files.
type JSONParser struct {
	MessageField   string // Field name for the message (default: "message")
	SignatureField string // Field name for the signature (default: "signature")
	SignerField    string // Field name for the signer address (default: "signer")
}

// ParseRecords parses records from a JSON file.
//
// Expected format:
//
//	[
//	  {"message": "...", "signature": "SIG_K1_...", "signer": "STM..."}
//	]
func (p *JSONParser) ParseRecords(jsonFile string) ([]Record, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return p.parse(file)
}

func (p *JSONParser) parse(r io.Reader) ([]Record, error) {
	var items []map[string]interface{}
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	messageField := fieldOrDefault(p.MessageField, "message")
	signatureField := fieldOrDefault(p.SignatureField, "signature")
	signerField := fieldOrDefault(p.SignerField, "signer")

	records := make([]Record, 0, len(items))
	for i, item := range items {
		var rec Record
		var err error
		if rec.Message, err = stringField(item, messageField, false); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rec.Signature, err = stringField(item, signatureField, true); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if rec.Signer, err = stringField(item, signerField, true); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// stringField extracts a string value from a decoded JSON object.
func stringField(item map[string]interface{}, field string, required bool) (string, error) {
	val, ok := item[field]
	if !ok {
		if required {
			return "", fmt.Errorf("missing %s field", field)
		}
		return "", nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s field must be a string, got %T", field, val)
	}
	return s, nil
}

// CSVParser parses records from CSV files.
type CSVParser struct {
	MessageCol   string // Column name for the message (default: "message")
	SignatureCol string // Column name for the signature (default: "signature")
	SignerCol    string // Column name for the signer address (default: "signer")
}

// ParseRecords parses records from a CSV file with a header row.
func (p *CSVParser) ParseRecords(csvFile string) ([]Record, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.parse(file)
}

func (p *CSVParser) parse(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	messageCol := fieldOrDefault(p.MessageCol, "message")
	signatureCol := fieldOrDefault(p.SignatureCol, "signature")
	signerCol := fieldOrDefault(p.SignerCol, "signer")

	messageIdx, signatureIdx, signerIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case messageCol:
			messageIdx = i
		case signatureCol:
			signatureIdx = i
		case signerCol:
			signerIdx = i
		}
	}
	if signatureIdx == -1 || signerIdx == -1 {
		return nil, fmt.Errorf("missing required columns: %s or %s",
			signatureCol, signerCol)
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record on line %d: %w",
				line, err)
		}

		var rec Record
		if messageIdx >= 0 {
			rec.Message = row[messageIdx]
		}
		rec.Signature = row[signatureIdx]
		rec.Signer = row[signerIdx]
		records = append(records, rec)
	}

	return records, nil
}

func fieldOrDefault(name, def string) string {
	if name == "" {
		return def
	}
	return name
}
