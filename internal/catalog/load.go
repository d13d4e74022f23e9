package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed data/plants.json
var embeddedDataset []byte

type dataset struct {
	Version int      `json:"version"`
	Plants  []Record `json:"plants"`
}

// Decode reads a dataset document ({"plants": [...]}) and drops entries
// without an id or name.
func Decode(r io.Reader) ([]Record, error) {
	var ds dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	out := make([]Record, 0, len(ds.Plants))
	for _, p := range ds.Plants {
		if p.ID == "" || p.Name == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Embedded returns the dataset compiled into the binary.
func Embedded() ([]Record, error) {
	return Decode(bytes.NewReader(embeddedDataset))
}

// LoadFile reads a dataset from disk.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
