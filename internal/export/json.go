package export

import (
	"encoding/json"
	"io"
)

// JSONExporter renders values as pretty-printed JSON
type JSONExporter struct{}

func (e *JSONExporter) Export(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
