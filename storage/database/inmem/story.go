package inmemrepos

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

// storyRepository is a map-backed story.Repository for tests and DB-less
// development. Writes are guarded by one mutex, so every logical operation
// is trivially atomic.
type storyRepository struct {
	mu sync.RWMutex

	students    map[int]story.Student
	weeks       map[int]story.Week
	submissions map[int]story.Submission
	sentences   map[int][]story.SentenceRecord

	studentPK, weekPK, inputPK int
}

var _ story.Repository = (*storyRepository)(nil)

func NewStoryRepository() *storyRepository {
	return &storyRepository{
		students:    make(map[int]story.Student),
		weeks:       make(map[int]story.Week),
		submissions: make(map[int]story.Submission),
		sentences:   make(map[int][]story.SentenceRecord),
	}
}

func (repo *storyRepository) UpsertStudent(_ context.Context, fullName, email string) (story.Student, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	email = core.CleanString(email, true /* lower */)
	now := time.Now().UTC()

	for id, st := range repo.students {
		if st.Email == email {
			st.FullName = core.CleanString(fullName)
			st.UpdatedAt = now
			repo.students[id] = st
			return st, nil
		}
	}

	repo.studentPK++
	st := story.Student{
		ID:        repo.studentPK,
		FullName:  core.CleanString(fullName),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.students[st.ID] = st
	return st, nil
}

func (repo *storyRepository) UpsertWeek(_ context.Context, number int, label string) (story.Week, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	label = core.CleanString(label)
	for id, w := range repo.weeks {
		if w.Number == number {
			if label != "" {
				w.Label = label
				repo.weeks[id] = w
			}
			return w, nil
		}
	}

	if label == "" {
		label = story.DefaultWeekLabel(number)
	}
	repo.weekPK++
	w := story.Week{ID: repo.weekPK, Number: number, Label: label}
	repo.weeks[w.ID] = w
	return w, nil
}

func (repo *storyRepository) SubmissionExists(_ context.Context, studentID, weekID int) (bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	return repo.exists(studentID, weekID), nil
}

func (repo *storyRepository) exists(studentID, weekID int) bool {
	for _, sub := range repo.submissions {
		if sub.StudentID == studentID && sub.WeekID == weekID {
			return true
		}
	}
	return false
}

func (repo *storyRepository) CreateSubmission(_ context.Context, sub story.Submission, sentences []story.SentenceRecord) (story.Submission, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.exists(sub.StudentID, sub.WeekID) {
		return story.Submission{}, story.ErrDuplicateSubmission
	}

	repo.inputPK++
	sub.ID = repo.inputPK
	sub.CreatedAt = time.Now().UTC()
	repo.submissions[sub.ID] = sub

	recs := make([]story.SentenceRecord, 0, len(sentences))
	for _, rec := range sentences {
		rec.InputID = sub.ID
		recs = append(recs, rec)
	}
	repo.sentences[sub.ID] = recs
	return sub, nil
}

func (repo *storyRepository) GetSubmission(_ context.Context, id int) (story.Submission, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	sub, ok := repo.submissions[id]
	if !ok {
		return story.Submission{}, story.ErrNotFound
	}
	return sub, nil
}

func (repo *storyRepository) GetSentences(_ context.Context, inputID int) ([]story.SentenceRecord, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	recs := make([]story.SentenceRecord, len(repo.sentences[inputID]))
	copy(recs, repo.sentences[inputID])
	sort.Slice(recs, func(i, j int) bool { return recs[i].Index < recs[j].Index })
	return recs, nil
}

func (repo *storyRepository) QuerySubmissions(_ context.Context, filter story.QueryFilter, ordering []core.DBOrdering) ([]story.Submission, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var weekID int
	if filter.WeekNumber > 0 {
		for _, w := range repo.weeks {
			if w.Number == filter.WeekNumber {
				weekID = w.ID
			}
		}
	}

	subs := make([]story.Submission, 0, len(repo.submissions))
	for _, sub := range repo.submissions {
		if filter.WeekNumber > 0 && sub.WeekID != weekID {
			continue
		}
		if filter.Email != "" && sub.Email != filter.Email {
			continue
		}
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		a, b := subs[i], subs[j]
		for _, ord := range ordering {
			cmp, ok := compareSubmissions(ord.Field, a, b)
			if !ok || cmp == 0 {
				continue
			}
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
		// default: newest first, with IDs breaking creation-time ties
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID > b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return subs, nil
}

// compareSubmissions resolves one ordering field against the same whitelist
// the SQL repository accepts; unknown fields report !ok and are skipped.
func compareSubmissions(field string, a, b story.Submission) (cmp int, ok bool) {
	switch field {
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1, true
		case a.CreatedAt.After(b.CreatedAt):
			return 1, true
		}
		return 0, true
	case "title":
		return strings.Compare(a.Title, b.Title), true
	case "email":
		return strings.Compare(a.Email, b.Email), true
	case "student_name":
		return strings.Compare(a.StudentName, b.StudentName), true
	case "week":
		return a.WeekID - b.WeekID, true
	}
	return 0, false
}
