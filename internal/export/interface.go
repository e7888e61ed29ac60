package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Exporter renders a value returned by the IRIS client (a session, a cached
// record, a labeling progress or a raw listing)
type Exporter interface {
	Export(v any, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, jsonl, yaml, md)", format)
	}
}

// toGeneric converts v to plain maps, slices and scalars through its JSON
// form, so that custom JSON encodings (preserved server fields, numeric ids)
// carry over to other formats
func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}
	// numbers stay json.Number so large ids are not turned into floats
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return out, nil
}
