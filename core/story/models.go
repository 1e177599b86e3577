package story

import (
	"context"
	"errors"
	"time"

	"github.com/datastorylab/showtell/core"
)

var (
	// errors
	ErrNotFound            = errors.New("submission not found")
	ErrSessionNotFound     = errors.New("session not found or expired")
	ErrDuplicateSubmission = errors.New("a story has already been submitted for this week")
)

type (
	// Student is created on first submission attempt and never deleted.
	// Email is the unique key, stored lower-cased.
	Student struct {
		ID        int       `db:"student_id" json:"id"`
		FullName  string    `db:"full_name" json:"full_name"`
		Email     string    `db:"email" json:"email"`
		CreatedAt time.Time `db:"created_at" json:"created_at"`
		UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	}

	// Week is an admin-defined submission period. Number is immutable;
	// the label may be refreshed.
	Week struct {
		ID     int    `db:"week_id" json:"id"`
		Number int    `db:"week_number" json:"week_number"`
		Label  string `db:"label" json:"label"`
	}

	// Submission is one student's complete story entry for one week,
	// plus its derived tallies and review metadata.
	Submission struct {
		ID             int       `db:"input_id" json:"id"`
		StudentID      int       `db:"student_id" json:"student_id"`
		WeekID         int       `db:"week_id" json:"week_id"`
		StudentName    string    `db:"student_name" json:"student_name"`
		Email          string    `db:"email" json:"email"`
		Title          string    `db:"title" json:"title"`
		Story          string    `db:"story" json:"story"`
		TotalSentences int       `db:"total_sentences" json:"total_sentences"`
		ShowSentences  int       `db:"show_sentences" json:"show_sentences"`
		TellSentences  int       `db:"tell_sentences" json:"tell_sentences"`
		Reflection     string    `db:"reflection" json:"reflection"`
		Comments       string    `db:"comments" json:"comments"`
		AgreedShow     int       `db:"agreed_show" json:"agreed_show"`
		AgreedTell     int       `db:"agreed_tell" json:"agreed_tell"`
		DisagreedShow  int       `db:"disagreed_show" json:"disagreed_show"`
		DisagreedTell  int       `db:"disagreed_tell" json:"disagreed_tell"`
		CreatedAt      time.Time `db:"created_at" json:"created_at"`
	}

	// SentenceRecord is one classified sentence of a submission, persisted
	// atomically with its parent. Index preserves classifier output order.
	SentenceRecord struct {
		InputID int    `db:"input_id" json:"input_id"`
		WeekID  int    `db:"week_id" json:"week_id"`
		Index   int    `db:"sentence_idx" json:"index"`
		Text    string `db:"sentence_text" json:"text"`
		Label   Label  `db:"model_label" json:"label"`
		Agree   bool   `db:"student_agree" json:"agree"`
	}

	// Summary holds the frozen tallies computed at the review step.
	Summary struct {
		TotalSentences int `json:"total_sentences"`
		ShowSentences  int `json:"show_sentences"`
		TellSentences  int `json:"tell_sentences"`
		AgreedShow     int `json:"agreed_show"`
		AgreedTell     int `json:"agreed_tell"`
		DisagreedShow  int `json:"disagreed_show"`
		DisagreedTell  int `json:"disagreed_tell"`
	}

	QueryFilter struct {
		WeekNumber int    `query:"week" json:"week"`
		Email      string `query:"email" json:"email"`
	}

	Repository interface {
		// UpsertStudent is idempotent by normalized email; FullName is
		// refreshed on conflict.
		UpsertStudent(ctx context.Context, fullName, email string) (Student, error)
		// UpsertWeek is idempotent by week number. An empty label leaves
		// any existing label untouched.
		UpsertWeek(ctx context.Context, number int, label string) (Week, error)
		SubmissionExists(ctx context.Context, studentID, weekID int) (bool, error)
		// CreateSubmission writes the submission row and all sentence rows
		// in a single transaction; on failure no partial rows remain.
		// A (student, week) conflict surfaces as ErrDuplicateSubmission.
		CreateSubmission(ctx context.Context, sub Submission, sentences []SentenceRecord) (Submission, error)
		GetSubmission(ctx context.Context, id int) (Submission, error)
		GetSentences(ctx context.Context, inputID int) ([]SentenceRecord, error)
		// QuerySubmissions applies AND on available QueryFilter fields.
		QuerySubmissions(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Submission, error)
	}
)

func (f *QueryFilter) Clean() {
	f.Email = core.CleanString(f.Email, true /* lower */)
}
