package story

import (
	"context"
	"strings"
)

// StubClassifier returns canned sentences, or naively splits the input when
// none are provided. For tests only.
type StubClassifier struct {
	Sentences []Sentence
	Err       error
}

var _ Classifier = (*StubClassifier)(nil)

func (c *StubClassifier) Classify(_ context.Context, text string) ([]Sentence, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Sentences != nil {
		out := make([]Sentence, len(c.Sentences))
		copy(out, c.Sentences)
		return out, nil
	}

	// fallback: split on '.' and alternate Show/Tell
	var out []Sentence
	for _, part := range strings.Split(text, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		label := LabelShow
		if len(out)%2 == 1 {
			label = LabelTell
		}
		out = append(out, Sentence{Index: len(out), Text: part + ".", Label: label})
	}
	return out, nil
}
