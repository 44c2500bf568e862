package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mcdev12/cubedraft/go/internal/models"
)

// JSONFile reads the pool from a JSON array of cards, the format the cube
// import tool writes.
type JSONFile struct {
	Path string
}

// NewJSONFile creates a source reading path.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{Path: path}
}

func (f *JSONFile) Load(_ context.Context) ([]models.Card, error) {
	pool, err := ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	if err := Validate(pool); err != nil {
		return nil, fmt.Errorf("card pool %s: %w", f.Path, err)
	}
	return pool, nil
}

// ReadFile decodes a pool file without validating it.
func ReadFile(path string) ([]models.Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card pool: %w", err)
	}
	var pool []models.Card
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("decode card pool %s: %w", path, err)
	}
	return pool, nil
}

// WriteFile writes a pool file with two-space indentation.
func WriteFile(path string, pool []models.Card) error {
	data, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return fmt.Errorf("encode card pool: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write card pool: %w", err)
	}
	return nil
}
