// internal/games/dreamboard/catalog.go

package dreamboard

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var cardsYAML []byte

// Card is one pinnable vision of the future
type Card struct {
	ID          string `yaml:"id" json:"id"`
	Category    string `yaml:"-" json:"category"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Tag         string `yaml:"tag" json:"tag"`
}

// Catalog holds cards grouped by category, in file order
type Catalog struct {
	Categories []string
	cards      map[string][]Card
	byID       map[string]Card
}

var (
	loadOnce      sync.Once
	loadedCatalog *Catalog
	loadErr       error
)

// LoadCatalog parses the embedded cards once
func LoadCatalog() (*Catalog, error) {
	loadOnce.Do(func() {
		loadedCatalog, loadErr = parseCatalog(cardsYAML)
	})
	return loadedCatalog, loadErr
}

func parseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Categories []struct {
			Name  string `yaml:"name"`
			Cards []Card `yaml:"cards"`
		} `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse dream board cards: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("dream board catalog is empty")
	}

	c := &Catalog{cards: make(map[string][]Card), byID: make(map[string]Card)}
	for _, cat := range doc.Categories {
		if len(cat.Cards) == 0 {
			return nil, fmt.Errorf("dream board category %q has no cards", cat.Name)
		}
		c.Categories = append(c.Categories, cat.Name)
		for _, card := range cat.Cards {
			if _, dup := c.byID[card.ID]; dup {
				return nil, fmt.Errorf("duplicate card %q", card.ID)
			}
			card.Category = cat.Name
			c.byID[card.ID] = card
			c.cards[cat.Name] = append(c.cards[cat.Name], card)
		}
	}
	return c, nil
}

// Card looks up a card by id
func (c *Catalog) Card(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// Cards returns the cards of one category
func (c *Catalog) Cards(category string) []Card {
	return c.cards[category]
}
