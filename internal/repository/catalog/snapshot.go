package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

//go:embed sample.json
var sampleJSON []byte

// Snapshot is the on-disk catalog format.
type Snapshot struct {
	Categories []product.Category `json:"categories"`
	Products   []product.Product  `json:"products"`
}

// Sample returns the built-in demo catalog.
func Sample() Snapshot {
	s, err := parse(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("embedded sample catalog: %v", err))
	}
	return s
}

// LoadFile reads a catalog snapshot from a JSON file.
func LoadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	s, err := parse(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return s, nil
}

// Load returns the snapshot at path, or the built-in sample when path is empty.
func Load(path string) (Snapshot, error) {
	if path == "" {
		return Sample(), nil
	}
	return LoadFile(path)
}

func parse(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("parse: %w", err)
	}
	seen := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		if p.ProductID == "" {
			return Snapshot{}, fmt.Errorf("product %q without id", p.Name)
		}
		if _, dup := seen[p.ProductID]; dup {
			return Snapshot{}, fmt.Errorf("duplicate product id %q", p.ProductID)
		}
		seen[p.ProductID] = struct{}{}
	}
	return s, nil
}
