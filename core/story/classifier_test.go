package story

import "testing"

func TestCheckSentences(t *testing.T) {
	tests := []struct {
		name      string
		sentences []Sentence
		wantErr   bool
	}{
		{name: "empty", sentences: nil, wantErr: true},
		{
			name: "ok",
			sentences: []Sentence{
				{Index: 0, Text: "The chart shows sales rose.", Label: LabelShow},
				{Index: 1, Text: "I think this is exciting.", Label: LabelTell},
			},
		},
		{
			name:      "index gap",
			sentences: []Sentence{{Index: 1, Text: "Hello.", Label: LabelShow}},
			wantErr:   true,
		},
		{
			name: "out of order",
			sentences: []Sentence{
				{Index: 1, Text: "Second.", Label: LabelShow},
				{Index: 0, Text: "First.", Label: LabelTell},
			},
			wantErr: true,
		},
		{
			name:      "empty text",
			sentences: []Sentence{{Index: 0, Text: "", Label: LabelShow}},
			wantErr:   true,
		},
		{
			name:      "unknown label",
			sentences: []Sentence{{Index: 0, Text: "Hello.", Label: "Shout"}},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckSentences(tt.sentences); (err != nil) != tt.wantErr {
				t.Errorf("CheckSentences() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
