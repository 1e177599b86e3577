package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

const uniqueViolation = "23505"

// orderable whitelists the fields a caller may order submissions by.
var orderable = map[string]string{
	"created_at":   "created_at",
	"title":        "title",
	"email":        "email",
	"student_name": "student_name",
	"week":         "week_id",
}

type storyRepository struct {
	db *sqlx.DB
}

var _ story.Repository = (*storyRepository)(nil) // interface compliance check

func NewStoryRepository(db *sql.DB) *storyRepository {
	return &storyRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo storyRepository) UpsertStudent(ctx context.Context, fullName, email string) (story.Student, error) {
	const q = `
		INSERT INTO students (full_name, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, updated_at = now()
		RETURNING student_id, full_name, email, created_at, updated_at`

	var student story.Student
	email = core.CleanString(email, true /* lower */)
	if err := repo.db.GetContext(ctx, &student, q, core.CleanString(fullName), email); err != nil {
		return story.Student{}, errors.Wrap(err, "upserting student")
	}
	return student, nil
}

func (repo storyRepository) UpsertWeek(ctx context.Context, number int, label string) (story.Week, error) {
	const q = `
		INSERT INTO weeks (week_number, label)
		VALUES ($1, $2)
		ON CONFLICT (week_number) DO UPDATE
			SET label = COALESCE(NULLIF(EXCLUDED.label, ''), weeks.label)
		RETURNING week_id, week_number, label`

	var week story.Week
	if err := repo.db.GetContext(ctx, &week, q, number, core.CleanString(label)); err != nil {
		return story.Week{}, errors.Wrap(err, "upserting week")
	}
	if week.Label == "" {
		week.Label = story.DefaultWeekLabel(week.Number)
	}
	return week, nil
}

func (repo storyRepository) SubmissionExists(ctx context.Context, studentID, weekID int) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM student_inputs WHERE student_id = $1 AND week_id = $2)`

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, studentID, weekID); err != nil {
		return false, errors.Wrap(err, "checking submission existence")
	}
	return exists, nil
}

func (repo storyRepository) CreateSubmission(ctx context.Context, sub story.Submission, sentences []story.SentenceRecord) (story.Submission, error) {
	var tx core.DBTransactor
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return story.Submission{}, errors.Wrap(err, "beginning transaction")
	}

	sub, err = repo.insertSubmission(ctx, tx, sub)
	if err == nil {
		for _, rec := range sentences {
			rec.InputID = sub.ID
			if err = repo.insertSentence(ctx, tx, rec); err != nil {
				break
			}
		}
	}
	if err != nil {
		_ = tx.Rollback()
		return story.Submission{}, err
	}
	if err = tx.Commit(); err != nil {
		return story.Submission{}, errors.Wrap(err, "committing submission")
	}
	return sub, nil
}

func (repo storyRepository) insertSubmission(ctx context.Context, exec core.DBExecutor, sub story.Submission) (story.Submission, error) {
	const q = `
		INSERT INTO student_inputs
			(student_id, week_id, student_name, email, title, story,
			 total_sentences, show_sentences, tell_sentences,
			 reflection, comments,
			 agreed_show, agreed_tell, disagreed_show, disagreed_tell)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING input_id, created_at`

	err := exec.QueryRowContext(ctx, q,
		sub.StudentID, sub.WeekID, sub.StudentName, sub.Email, sub.Title, sub.Story,
		sub.TotalSentences, sub.ShowSentences, sub.TellSentences,
		sub.Reflection, sub.Comments,
		sub.AgreedShow, sub.AgreedTell, sub.DisagreedShow, sub.DisagreedTell,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return story.Submission{}, repo.trapDuplicateErr(err, "inserting submission")
	}
	return sub, nil
}

func (repo storyRepository) insertSentence(ctx context.Context, exec core.DBExecutor, rec story.SentenceRecord) error {
	const q = `
		INSERT INTO student_sentences
			(input_id, week_id, sentence_idx, sentence_text, model_label, student_agree)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := exec.ExecContext(ctx, q,
		rec.InputID, rec.WeekID, rec.Index, rec.Text, string(rec.Label), rec.Agree,
	); err != nil {
		return errors.Wrap(err, "inserting sentence")
	}
	return nil
}

func (repo storyRepository) GetSubmission(ctx context.Context, id int) (story.Submission, error) {
	const q = `SELECT * FROM student_inputs WHERE input_id = $1`

	var sub story.Submission
	if err := repo.db.GetContext(ctx, &sub, q, id); err != nil {
		return story.Submission{}, repo.trapNoRowsErr(err, "getting submission")
	}
	return sub, nil
}

func (repo storyRepository) GetSentences(ctx context.Context, inputID int) ([]story.SentenceRecord, error) {
	const q = `SELECT * FROM student_sentences WHERE input_id = $1 ORDER BY sentence_idx`

	var sentences []story.SentenceRecord
	if err := repo.db.SelectContext(ctx, &sentences, q, inputID); err != nil {
		return nil, errors.Wrap(err, "querying sentences")
	}
	return sentences, nil
}

func (repo storyRepository) QuerySubmissions(ctx context.Context, filter story.QueryFilter, ordering []core.DBOrdering) ([]story.Submission, error) {
	q := `SELECT si.* FROM student_inputs si`
	conds := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.WeekNumber > 0 {
		q += ` JOIN weeks w ON w.week_id = si.week_id`
		args = append(args, filter.WeekNumber)
		conds = append(conds, `w.week_number = $1`)
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		if len(args) == 1 {
			conds = append(conds, `si.email = $1`)
		} else {
			conds = append(conds, `si.email = $2`)
		}
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY ` + repo.orderClause(ordering)

	var subs []story.Submission
	if err := repo.db.SelectContext(ctx, &subs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	return subs, nil
}

// orderClause maps requested orderings onto the whitelist; unknown fields
// are dropped rather than interpolated.
func (repo storyRepository) orderClause(ordering []core.DBOrdering) string {
	clauses := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := orderable[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: "si." + col, Ascending: ord.Ascending}.String())
	}
	if len(clauses) == 0 {
		return "si.created_at DESC"
	}
	return strings.Join(clauses, ", ")
}

// trapNoRowsErr maps psql "no rows" err to story.ErrNotFound
func (repo storyRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return story.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// trapDuplicateErr maps a (student_id, week_id) unique violation to
// story.ErrDuplicateSubmission; the constraint is the source of truth for
// duplicates even when the earlier existence probe raced.
func (repo storyRepository) trapDuplicateErr(err error, msg string) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return story.ErrDuplicateSubmission
	}
	return errors.Wrap(err, msg)
}
