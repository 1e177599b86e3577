package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

// NewConfig returns a config suitable for tests: no external credentials
// required, no debug error bodies, console mail.
func NewConfig() *core.Config {
	return &core.Config{
		Env:         "TEST",
		Debug:       false,
		TestMode:    true,
		AppName:     "ShowTell",
		SecretKey:   "secret",
		AdminKey:    "test-admin-key",
		CurrentWeek: 5,
		Server: core.ServerConfig{
			Host:               "127.0.0.1:0",
			ShutdownTimeout:    5 * time.Second,
			JWTExpirationDelta: 4 * time.Hour,
		},
		Mail: core.MailConfig{
			Backend: "console",
			Address: "noreply@showtell.test",
		},
	}
}

// Logger is a test double for core.Logger; it records nothing and fails the
// test on Fatal.
type Logger struct {
	T *testing.T
}

func NewLogger(t *testing.T) *Logger { return &Logger{T: t} }

func (l *Logger) Enable(enabled bool)                   {}
func (l *Logger) Debug(msg string, args ...interface{}) {}
func (l *Logger) Info(msg string, args ...interface{})  {}
func (l *Logger) Warn(msg string, args ...interface{})  {}
func (l *Logger) Error(msg string, args ...interface{}) {}
func (l *Logger) Fatal(msg string, args ...interface{}) {
	if l.T != nil {
		l.T.Fatalf("logger.Fatal: %s %v", msg, args)
	}
}

var _ core.Logger = (*Logger)(nil)

// Sentences returns a deterministic classifier output for tests.
func Sentences() []story.Sentence {
	return []story.Sentence{
		{Index: 0, Text: "The chart shows sales rose.", Label: story.LabelShow},
		{Index: 1, Text: "I think this is exciting.", Label: story.LabelTell},
	}
}

// CreateSubmission persists a minimal submission for the given student and
// week through the repository.
func CreateSubmission(t *testing.T, repo story.Repository, name, email string, weekNumber int) story.Submission {
	t.Helper()
	ctx := context.Background()

	student, err := repo.UpsertStudent(ctx, name, email)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	week, err := repo.UpsertWeek(ctx, weekNumber, "")
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}

	sentences := Sentences()
	sub := story.Submission{
		StudentID:      student.ID,
		WeekID:         week.ID,
		StudentName:    name,
		Email:          email,
		Title:          "Sales story",
		Story:          sentences[0].Text + " " + sentences[1].Text,
		TotalSentences: 2,
		ShowSentences:  1,
		TellSentences:  1,
		AgreedShow:     1,
		DisagreedTell:  1,
	}
	records := []story.SentenceRecord{
		{WeekID: week.ID, Index: 0, Text: sentences[0].Text, Label: sentences[0].Label, Agree: true},
		{WeekID: week.ID, Index: 1, Text: sentences[1].Text, Label: sentences[1].Label, Agree: false},
	}
	sub, err = repo.CreateSubmission(ctx, sub, records)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}
