package triage

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

// Detector finds crisis phrases in raw utterance text.
type Detector interface {
	// Detect returns every matched phrase, in lexicon order, or nil.
	Detect(text string) []string
	Version() int
}

type Phrase struct {
	Phrase string `yaml:"phrase"`
	Tag    string `yaml:"tag"`
}

type lexiconFile struct {
	Version int      `yaml:"version"`
	Phrases []Phrase `yaml:"phrases"`
}

// LexiconDetector is a case-insensitive substring matcher over a fixed,
// versioned phrase list.
type LexiconDetector struct {
	version int
	phrases []Phrase
}

// DefaultDetector parses the lexicon compiled into the binary.
func DefaultDetector() (*LexiconDetector, error) {
	return ParseLexicon(defaultLexicon)
}

func ParseLexicon(data []byte) (*LexiconDetector, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if f.Version <= 0 {
		return nil, errors.New("lexicon: version required")
	}
	if len(f.Phrases) == 0 {
		return nil, errors.New("lexicon: no phrases")
	}
	out := make([]Phrase, 0, len(f.Phrases))
	seen := make(map[string]bool, len(f.Phrases))
	for i, p := range f.Phrases {
		norm := strings.ToLower(strings.TrimSpace(p.Phrase))
		if norm == "" {
			return nil, fmt.Errorf("lexicon: empty phrase at %d", i)
		}
		if seen[norm] {
			return nil, fmt.Errorf("lexicon: duplicate phrase %q", norm)
		}
		seen[norm] = true
		out = append(out, Phrase{Phrase: norm, Tag: strings.TrimSpace(p.Tag)})
	}
	return &LexiconDetector{version: f.Version, phrases: out}, nil
}

func (d *LexiconDetector) Version() int { return d.version }

func (d *LexiconDetector) Phrases() []Phrase {
	out := make([]Phrase, len(d.phrases))
	copy(out, d.phrases)
	return out
}

func (d *LexiconDetector) Detect(text string) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	var matched []string
	for _, p := range d.phrases {
		if strings.Contains(lower, p.Phrase) {
			matched = append(matched, p.Phrase)
		}
	}
	return matched
}
