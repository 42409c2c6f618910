// Package education serves the static learning material, the knowledge quiz
// and the option payoff and risk sizing calculators.
package education

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var contentYAML []byte

var ErrTopicNotFound = errors.New("topic not found")

// Point is a term with its explanation.
type Point struct {
	Term string `yaml:"term" json:"term"`
	Text string `yaml:"text" json:"text"`
}

// Section is one block of a topic page.
type Section struct {
	Heading string  `yaml:"heading" json:"heading"`
	Body    string  `yaml:"body,omitempty" json:"body,omitempty"`
	Points  []Point `yaml:"points,omitempty" json:"points,omitempty"`
}

// Topic is a learning page.
type Topic struct {
	ID       string    `yaml:"id" json:"id"`
	Title    string    `yaml:"title" json:"title"`
	Summary  string    `yaml:"summary" json:"summary"`
	Sections []Section `yaml:"sections" json:"sections,omitempty"`
}

// Library holds the parsed topics in file order and the quiz bank.
type Library struct {
	topics []Topic
	byID   map[string]int
	quiz   []Question
}

// Load parses the embedded content.
func Load() (*Library, error) {
	return Parse(contentYAML)
}

// Parse builds a Library from YAML.
func Parse(data []byte) (*Library, error) {
	var doc struct {
		Topics []Topic    `yaml:"topics"`
		Quiz   []Question `yaml:"quiz"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := validateQuiz(doc.Quiz); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	lib := &Library{topics: doc.Topics, byID: make(map[string]int, len(doc.Topics)), quiz: doc.Quiz}
	for i, t := range doc.Topics {
		if t.ID == "" {
			return nil, fmt.Errorf("parse content: topic %d has no id", i)
		}
		if _, dup := lib.byID[t.ID]; dup {
			return nil, fmt.Errorf("parse content: duplicate topic %q", t.ID)
		}
		lib.byID[t.ID] = i
	}
	return lib, nil
}

// Topics lists the topics whose IDs are in allowed, or all when allowed is empty.
func (l *Library) Topics(allowed ...string) []Topic {
	if len(allowed) == 0 {
		return append([]Topic(nil), l.topics...)
	}
	out := make([]Topic, 0, len(allowed))
	for _, t := range l.topics {
		for _, id := range allowed {
			if t.ID == id {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// Topic returns a single topic by ID.
func (l *Library) Topic(id string) (Topic, error) {
	i, ok := l.byID[id]
	if !ok {
		return Topic{}, fmt.Errorf("%w: %q", ErrTopicNotFound, id)
	}
	return l.topics[i], nil
}
