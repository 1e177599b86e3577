package inmemrepos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

func TestStoryRepository_UpsertStudent(t *testing.T) {
	repo := NewStoryRepository()
	ctx := context.Background()

	st, err := repo.UpsertStudent(ctx, "Awe Kan", "awe@test.cd")
	assert.NoError(t, err)
	assert.Equal(t, 1, st.ID)
	assert.Equal(t, "awe@test.cd", st.Email)

	// same email, different case and name: same student, name refreshed
	st2, err := repo.UpsertStudent(ctx, "Awe K.", "AWE@Test.CD")
	assert.NoError(t, err)
	assert.Equal(t, st.ID, st2.ID)
	assert.Equal(t, "Awe K.", st2.FullName)

	st3, err := repo.UpsertStudent(ctx, "King Aj", "king@test.cd")
	assert.NoError(t, err)
	assert.NotEqual(t, st.ID, st3.ID)
}

func TestStoryRepository_UpsertWeek(t *testing.T) {
	repo := NewStoryRepository()
	ctx := context.Background()

	w, err := repo.UpsertWeek(ctx, 5, "")
	assert.NoError(t, err)
	assert.Equal(t, "Week 5", w.Label)

	// label refresh
	w2, err := repo.UpsertWeek(ctx, 5, "Midterms")
	assert.NoError(t, err)
	assert.Equal(t, w.ID, w2.ID)
	assert.Equal(t, "Midterms", w2.Label)

	// empty label leaves the existing one
	w3, err := repo.UpsertWeek(ctx, 5, "")
	assert.NoError(t, err)
	assert.Equal(t, "Midterms", w3.Label)
}

func TestStoryRepository_CreateSubmission(t *testing.T) {
	repo := NewStoryRepository()
	ctx := context.Background()

	st, err := repo.UpsertStudent(ctx, "Awe Kan", "awe@test.cd")
	assert.NoError(t, err)
	w, err := repo.UpsertWeek(ctx, 5, "")
	assert.NoError(t, err)

	exists, err := repo.SubmissionExists(ctx, st.ID, w.ID)
	assert.NoError(t, err)
	assert.False(t, exists)

	sub := story.Submission{
		StudentID: st.ID, WeekID: w.ID,
		StudentName: "Awe Kan", Email: "awe@test.cd",
		Title: "Sales story", Story: "The chart shows sales rose.",
		TotalSentences: 1, ShowSentences: 1, AgreedShow: 1,
	}
	records := []story.SentenceRecord{
		{WeekID: w.ID, Index: 0, Text: "The chart shows sales rose.", Label: story.LabelShow, Agree: true},
	}
	sub, err = repo.CreateSubmission(ctx, sub, records)
	assert.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())

	exists, err = repo.SubmissionExists(ctx, st.ID, w.ID)
	assert.NoError(t, err)
	assert.True(t, exists)

	// sentence rows carry the parent's id
	recs, err := repo.GetSentences(ctx, sub.ID)
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, sub.ID, recs[0].InputID)

	// second entry for the same pair is refused
	_, err = repo.CreateSubmission(ctx, sub, records)
	assert.Equal(t, story.ErrDuplicateSubmission, err)

	// unknown ids
	_, err = repo.GetSubmission(ctx, 999)
	assert.Equal(t, story.ErrNotFound, err)
}

func TestStoryRepository_QuerySubmissions(t *testing.T) {
	repo := NewStoryRepository()
	ctx := context.Background()

	st1, _ := repo.UpsertStudent(ctx, "Awe Kan", "awe@test.cd")
	st2, _ := repo.UpsertStudent(ctx, "King Aj", "king@test.cd")
	w4, _ := repo.UpsertWeek(ctx, 4, "")
	w5, _ := repo.UpsertWeek(ctx, 5, "")

	mkSub := func(st story.Student, w story.Week) story.Submission {
		sub, err := repo.CreateSubmission(ctx, story.Submission{
			StudentID: st.ID, WeekID: w.ID, StudentName: st.FullName, Email: st.Email,
			Title: "t", Story: "s.",
		}, nil)
		assert.NoError(t, err)
		return sub
	}
	sub1 := mkSub(st1, w4)
	sub2 := mkSub(st1, w5)
	sub3 := mkSub(st2, w5)

	subs, err := repo.QuerySubmissions(ctx, story.QueryFilter{}, nil)
	assert.NoError(t, err)
	assert.Len(t, subs, 3)

	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{WeekNumber: 5}, nil)
	assert.NoError(t, err)
	assert.Equal(t, []story.Submission{sub3, sub2}, subs)

	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{Email: "awe@test.cd"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, []story.Submission{sub2, sub1}, subs)

	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{WeekNumber: 4, Email: "king@test.cd"}, nil)
	assert.NoError(t, err)
	assert.Empty(t, subs)

	// ordering: whitelisted fields apply, email ties fall back to newest-first
	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{}, []core.DBOrdering{{Field: "email", Ascending: true}})
	assert.NoError(t, err)
	assert.Equal(t, []story.Submission{sub2, sub1, sub3}, subs)

	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{}, []core.DBOrdering{{Field: "student_name"}})
	assert.NoError(t, err)
	assert.Equal(t, []story.Submission{sub3, sub2, sub1}, subs)

	// unknown fields are ignored, not errors
	subs, err = repo.QuerySubmissions(ctx, story.QueryFilter{}, []core.DBOrdering{{Field: "lol; DROP TABLE"}})
	assert.NoError(t, err)
	assert.Equal(t, []story.Submission{sub3, sub2, sub1}, subs)
}
