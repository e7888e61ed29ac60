package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter renders listings one element per line. Anything that is not a
// JSON array is written as a single line.
type JSONLExporter struct{}

func (e *JSONLExporter) Export(v any, w io.Writer) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	items, ok := generic.([]any)
	if !ok {
		return enc.Encode(generic)
	}

	for i, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to encode element %d: %w", i, err)
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
