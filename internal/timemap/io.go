package timemap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Encode writes m as an indented JSON array. An empty map encodes as [].
func Encode(w io.Writer, m Map) error {
	if m == nil {
		m = Map{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Decode reads a JSON array of segments and validates it.
func Decode(r io.Reader) (Map, error) {
	var m Map
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode time map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a time map file.
func Load(path string) (Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open time map: %w", err)
	}
	defer file.Close()
	return Decode(file)
}
