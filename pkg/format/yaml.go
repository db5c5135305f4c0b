package format

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// MarshalYAML encodes v with the two space indentation used for every YAML document the tool prints.
func MarshalYAML(v any) (string, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(v); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
