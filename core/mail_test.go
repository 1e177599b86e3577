package core_test

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/datastorylab/showtell/core"
)

type feedbackSentenceData struct {
	Label string
	Text  string
	Agree bool
}

type feedbackSummaryData struct {
	TotalSentences, ShowSentences, TellSentences         int
	AgreedShow, AgreedTell, DisagreedShow, DisagreedTell int
}

func TestEmailMessage_Render(t *testing.T) {
	data := struct {
		StudentName string
		Title       string
		Summary     feedbackSummaryData
		Changed     int
		Sentences   []feedbackSentenceData
		Comment     string
		Reflection  string
	}{
		StudentName: "Awe Kan",
		Title:       "Sales Story",
		Summary:     feedbackSummaryData{TotalSentences: 2, ShowSentences: 1, TellSentences: 1, AgreedShow: 1, DisagreedTell: 1},
		Changed:     1,
		Sentences: []feedbackSentenceData{
			{Label: "Show", Text: "The chart shows sales rose.", Agree: true},
			{Label: "Tell", Text: "I think this is exciting.", Agree: false},
		},
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: "Awe Kan", Address: "awe@test.cd"}},
		Subject:      "Feedback for Your Data Story: Sales Story",
		TemplateName: "feedback",
		TemplateData: data,
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed! err %v", err)
	}

	wantFragments := []string{
		"Dear Awe Kan,",
		"- [Show] The chart shows sales rose.",
		"- [Tell] I think this is exciting.",
		"Agreed",
		"Did NOT agree",
		"No additional comment provided.",
		"No reflection provided.",
		"Best regards,", // from the layout partial
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(msg.TextContent, fragment) {
			t.Errorf("TextContent missing %q\n%s", fragment, msg.TextContent)
		}
	}
}
