package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func readYamlFile[T any](path string) (T, error) {
	var result T

	file, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("os.Open(%s)> %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := yaml.NewDecoder(file).Decode(&result); err != nil {
		return result, fmt.Errorf("yaml.NewDecoder().Decode()> %w", err)
	}
	return result, nil
}

func writeYamlFile[T any](path string, data T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s)> %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	return yaml.NewEncoder(file).Encode(data)
}

// FileRepository stores one policy YAML document per deck under a directory.
type FileRepository struct {
	dir string
}

// NewFileRepository creates a FileRepository rooted at dir.
func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{dir: dir}
}

func (r *FileRepository) path(deckID int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("%d.yml", deckID))
}

// FindByDeck loads the policy for a deck. A missing file yields the default
// policy; a present but invalid file is an error.
func (r *FileRepository) FindByDeck(deckID int64) (DeckPolicy, error) {
	path := r.path(deckID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	p, err := readYamlFile[DeckPolicy](path)
	if err != nil {
		return DeckPolicy{}, fmt.Errorf("readYamlFile(%s) > %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return DeckPolicy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}

// Save writes the policy for a deck, validating it first.
func (r *FileRepository) Save(deckID int64, p DeckPolicy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", r.dir, err)
	}
	if err := writeYamlFile(r.path(deckID), p); err != nil {
		return fmt.Errorf("writeYamlFile(%s) > %w", r.path(deckID), err)
	}
	return nil
}
