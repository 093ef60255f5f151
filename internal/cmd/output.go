package cmd

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// writeOutput encodes v as YAML (2-space indent) or indented JSON.
func writeOutput(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
