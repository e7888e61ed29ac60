package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter renders values as YAML
type YAMLExporter struct{}

func (e *YAMLExporter) Export(v any, w io.Writer) error {
	generic, err := toGeneric(v)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
