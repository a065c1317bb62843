package deck

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog is the read-only set of known decks. It is built once at startup and
// handed to the session engine and the web layer; neither mutates it.
type Catalog struct {
	decks []Deck
	byID  map[string]int
}

// NewCatalog builds a catalog from the given decks. Later decks replace
// earlier ones with the same id.
func NewCatalog(decks []Deck) *Catalog {
	c := &Catalog{byID: make(map[string]int)}
	for _, d := range decks {
		if i, ok := c.byID[d.ID]; ok {
			slog.Warn("duplicate deck id, keeping the later one", "id", d.ID)
			c.decks[i] = d
			continue
		}
		c.byID[d.ID] = len(c.decks)
		c.decks = append(c.decks, d)
	}
	return c
}

// ByID returns the deck with the given id, or false if the catalog has none.
func (c *Catalog) ByID(id string) (Deck, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Deck{}, false
	}
	return c.decks[i], true
}

// Decks returns all decks in load order.
func (c *Catalog) Decks() []Deck {
	return c.decks
}

// LoadDir walks dir for .yaml/.yml files, each describing one deck, and builds
// a catalog from them. Files that fail to parse or validate are skipped with a
// warning rather than aborting the whole load.
func LoadDir(dir string) (*Catalog, error) {
	var decks []Deck
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		dk, parseErr := ParseFile(path)
		if parseErr != nil {
			slog.Warn("skipping deck file", "path", path, "error", parseErr)
			return nil
		}
		decks = append(decks, dk)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk decks directory %s: %w", dir, err)
	}
	return NewCatalog(decks), nil
}

// ParseFile reads one YAML deck file.
func ParseFile(path string) (Deck, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Deck{}, fmt.Errorf("failed to load deck file: %w", err)
	}
	var d Deck
	if err := k.Unmarshal("", &d); err != nil {
		return Deck{}, fmt.Errorf("failed to decode deck: %w", err)
	}
	if err := validate.Struct(d); err != nil {
		return Deck{}, fmt.Errorf("invalid deck: %w", err)
	}
	return d, nil
}
