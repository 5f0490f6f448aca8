// internal/games/spectrum/catalog.go

package spectrum

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// QuestionCount is the number of rounds in a session
const QuestionCount = 30

//go:embed questions.yaml
var questionsYAML []byte

// Question is one slider prompt
type Question struct {
	Index    int    `yaml:"-" json:"index"`
	Category string `yaml:"category" json:"category"`
	Spice    int    `yaml:"spice" json:"spice_level"`
	Prompt   string `yaml:"prompt" json:"prompt"`
	Left     string `yaml:"left" json:"left_label"`
	Right    string `yaml:"right" json:"right_label"`
}

var (
	loadOnce        sync.Once
	loadedQuestions []Question
	loadErr         error
)

// LoadQuestions parses the embedded question list once
func LoadQuestions() ([]Question, error) {
	loadOnce.Do(func() {
		loadedQuestions, loadErr = parseQuestions(questionsYAML)
	})
	return loadedQuestions, loadErr
}

func parseQuestions(data []byte) ([]Question, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse spectrum questions: %w", err)
	}
	if len(doc.Questions) != QuestionCount {
		return nil, fmt.Errorf("spectrum needs %d questions, got %d", QuestionCount, len(doc.Questions))
	}
	prevSpice := 0
	for i := range doc.Questions {
		q := &doc.Questions[i]
		q.Index = i
		if _, ok := CategoryWeights[q.Category]; !ok {
			return nil, fmt.Errorf("question %d has unknown category %q", i, q.Category)
		}
		if q.Spice < 1 || q.Spice > 3 || q.Spice < prevSpice {
			return nil, fmt.Errorf("question %d spice level %d out of order", i, q.Spice)
		}
		prevSpice = q.Spice
	}
	return doc.Questions, nil
}
