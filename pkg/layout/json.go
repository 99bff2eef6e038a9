package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// Marshal serializes a layout to pretty-printed JSON.
func Marshal(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// Unmarshal deserializes a layout and checks that every edge refers to a
// node present in the layout.
func Unmarshal(data []byte) (*Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.Nodes == nil {
		l.Nodes = []GeometricNode{}
	}
	if l.Edges == nil {
		l.Edges = []Edge{}
	}
	l.reindex()
	for _, e := range l.Edges {
		if _, ok := l.index[e.From]; !ok {
			return nil, fmt.Errorf("edge references unknown node %q", e.From)
		}
		if _, ok := l.index[e.To]; !ok {
			return nil, fmt.Errorf("edge references unknown node %q", e.To)
		}
	}
	return &l, nil
}

// WriteFile writes a layout to a JSON file.
func WriteFile(l *Layout, path string) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a layout from a JSON file.
func ReadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
