package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
)

// VariableName is the global the generated script assigns the records to.
const VariableName = "symbolData"

// Serialize renders records as a single JavaScript assignment:
//
//	var symbolData = [{"name":"Icon/Home","symbolId":"A1","symbolIndex":0}];
//
// A nil or empty slice is rendered as [].
func Serialize(records []SymbolRecord) ([]byte, error) {
	if records == nil {
		records = []SymbolRecord{}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode symbol records: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(VariableName) + 8)
	buf.WriteString("var ")
	buf.WriteString(VariableName)
	buf.WriteString(" = ")
	buf.Write(data)
	buf.WriteString(";\n")
	return buf.Bytes(), nil
}

// WriteFile serializes records to path, replacing whatever was there.
// The parent directory is created when missing.
func WriteFile(path string, records []SymbolRecord) error {
	payload, err := Serialize(records)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", path, err)
	}

	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}

// Parse evaluates a generated script and returns the records it assigns.
func Parse(payload []byte) ([]SymbolRecord, error) {
	vm := goja.New()
	if _, err := vm.RunString(string(payload)); err != nil {
		return nil, fmt.Errorf("evaluate symbol data: %w", err)
	}

	v := vm.Get(VariableName)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("symbol data does not assign %s", VariableName)
	}

	// Round-trip through JSON so that the struct tags drive decoding.
	encoded, err := json.Marshal(v.Export())
	if err != nil {
		return nil, fmt.Errorf("re-encode %s: %w", VariableName, err)
	}

	records := []SymbolRecord{}
	if err := json.Unmarshal(encoded, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", VariableName, err)
	}
	return records, nil
}

// ReadFile parses the script stored at path.
func ReadFile(path string) ([]SymbolRecord, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return Parse(payload)
}
