package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantLines []string
	}{
		{
			name:      "listing",
			input:     json.RawMessage(`[{"id": 1, "username": "a"}, {"id": 2, "username": "b"}]`),
			wantLines: []string{`{"id":1,"username":"a"}`, `{"id":2,"username":"b"}`},
		},
		{
			name:      "single object",
			input:     json.RawMessage(`{"labeledAnnotations": 3}`),
			wantLines: []string{`{"labeledAnnotations":3}`},
		},
		{
			name:      "empty listing",
			input:     json.RawMessage(`[]`),
			wantLines: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}
			if err := exporter.Export(tt.input, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			out := strings.TrimSuffix(buf.String(), "\n")
			var lines []string
			if out != "" {
				lines = strings.Split(out, "\n")
			}
			if len(lines) != len(tt.wantLines) {
				t.Fatalf("Export() wrote %d lines, want %d: %q", len(lines), len(tt.wantLines), buf.String())
			}
			for i, want := range tt.wantLines {
				if lines[i] != want {
					t.Errorf("line %d = %s, want %s", i, lines[i], want)
				}
			}
		})
	}
}
