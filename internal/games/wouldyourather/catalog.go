// internal/games/wouldyourather/catalog.go

package wouldyourather

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// Categories in display order. They line up with date-plan preferences.
var Categories = []string{"adventure", "budget", "pace", "social", "communication"}

const perCategory = 2

// QuestionCount is how many questions one session asks
var QuestionCount = perCategory * len(Categories)

//go:embed catalog.yaml
var catalogYAML []byte

// Option is one side of a question
type Option struct {
	Key  string `yaml:"key" json:"key"`
	Text string `yaml:"text" json:"text"`
	Tag  string `yaml:"tag" json:"tag"`
}

// Question is one catalog entry
type Question struct {
	ID       string `yaml:"id" json:"id"`
	Category string `yaml:"category" json:"category"`
	Prompt   string `yaml:"prompt" json:"prompt"`
	A        Option `yaml:"a" json:"a"`
	B        Option `yaml:"b" json:"b"`
}

// Option returns the option with key, if any
func (q Question) Option(key string) (Option, bool) {
	switch key {
	case q.A.Key:
		return q.A, true
	case q.B.Key:
		return q.B, true
	}
	return Option{}, false
}

// Catalog indexes the embedded question bank
type Catalog struct {
	Questions  []Question
	byID       map[string]Question
	byCategory map[string][]Question
}

var (
	loadOnce      sync.Once
	loadedCatalog *Catalog
	loadErr       error
)

// LoadCatalog parses the embedded bank once
func LoadCatalog() (*Catalog, error) {
	loadOnce.Do(func() {
		loadedCatalog, loadErr = parseCatalog(catalogYAML)
	})
	return loadedCatalog, loadErr
}

func parseCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse would-you-rather catalog: %w", err)
	}
	c := &Catalog{
		Questions:  doc.Questions,
		byID:       make(map[string]Question, len(doc.Questions)),
		byCategory: make(map[string][]Question),
	}
	for _, q := range doc.Questions {
		if q.ID == "" || q.A.Key == "" || q.B.Key == "" || q.A.Key == q.B.Key {
			return nil, fmt.Errorf("catalog question %q is incomplete", q.ID)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog question %q", q.ID)
		}
		c.byID[q.ID] = q
		c.byCategory[q.Category] = append(c.byCategory[q.Category], q)
	}
	for _, cat := range Categories {
		if len(c.byCategory[cat]) < perCategory {
			return nil, fmt.Errorf("catalog category %q needs at least %d questions", cat, perCategory)
		}
	}
	return c, nil
}

// Question looks up a catalog entry by id
func (c *Catalog) Question(id string) (Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Draw picks perCategory questions from every category. perm is usually rand.Perm.
func (c *Catalog) Draw(perm func(n int) []int) []string {
	ids := make([]string, 0, QuestionCount)
	for _, cat := range Categories {
		pool := c.byCategory[cat]
		for _, i := range perm(len(pool))[:perCategory] {
			ids = append(ids, pool[i].ID)
		}
	}
	return ids
}
