package structure

import (
	"encoding/json"
	"fmt"
	"time"
)

// exportDoc is the on-disk JSON form of an exported project.
type exportDoc struct {
	Name       string         `json:"name"`
	Structure  map[string]any `json:"structure"`
	ExportedAt time.Time      `json:"exported_at"`
}

// ExportJSON serializes a project's structure for sharing.
func ExportJSON(name string, s map[string]any) ([]byte, error) {
	doc := exportDoc{Name: name, Structure: s, ExportedAt: time.Now().UTC()}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return out, nil
}

// ImportJSON reads an exported project back.
func ImportJSON(data []byte) (name string, s map[string]any, err error) {
	var doc exportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("decoding import: %w", err)
	}
	if doc.Name == "" {
		return "", nil, fmt.Errorf("import is missing the project name")
	}
	if doc.Structure == nil {
		return "", nil, fmt.Errorf("import is missing the structure")
	}
	return doc.Name, doc.Structure, nil
}
