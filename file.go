package fieldpath

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile serializes the record with [Marshal] and writes it to path as
// indented json.
func SaveFile(record any, path string) error {
	value, err := Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	encoded, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	encoded = append(encoded, '\n')

	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}

	return nil
}

// LoadFile reads a json file written by [SaveFile] and populates target,
// which must be a non-nil pointer, using [Unmarshal].
func LoadFile(target any, path string) error {
	encoded, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	var value Value
	if err := json.Unmarshal(encoded, &value); err != nil {
		return fmt.Errorf("decode %q: %w", path, err)
	}

	if err := Unmarshal(value, target); err != nil {
		return fmt.Errorf("unmarshal %q: %w", path, err)
	}

	return nil
}
