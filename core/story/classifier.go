package story

import (
	"context"
	"fmt"

	"github.com/datastorylab/showtell/core"
)

// Label is a sentence category assigned by the classifier.
type Label string

const (
	// LabelShow marks descriptive, scene-setting sentences.
	LabelShow Label = "Show"
	// LabelTell marks interpretive or explanatory sentences.
	LabelTell Label = "Tell"
)

func (l Label) Valid() bool {
	return l == LabelShow || l == LabelTell
}

// Sentence is one unit of classifier output.
type Sentence struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Label Label  `json:"label"`
}

// Classifier labels each sentence of a story as Show or Tell.
// Output covers the entire input in order: sentences keep their original
// order and carry contiguous 0-based indexes.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]Sentence, error)
}

// CheckSentences validates the classifier output contract before it is
// cached in a session or persisted.
func CheckSentences(sentences []Sentence) error {
	if len(sentences) == 0 {
		return core.NewValidationError(
			fmt.Errorf("the story produced no sentences to analyze"),
			core.FieldError{Field: "story", Error: "the story produced no sentences to analyze"},
		)
	}
	for i, s := range sentences {
		if s.Index != i {
			return fmt.Errorf("classifier output out of order: sentence %d carries index %d", i, s.Index)
		}
		if s.Text == "" {
			return fmt.Errorf("classifier returned an empty sentence at index %d", i)
		}
		if !s.Label.Valid() {
			return fmt.Errorf("classifier returned unknown label %q at index %d", s.Label, i)
		}
	}
	return nil
}
