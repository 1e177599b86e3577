package story

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/datastorylab/showtell/core"
)

// Step is a state of the submission workflow.
type Step string

const (
	StepInput      Step = "input"
	StepAnalysis   Step = "analysis"
	StepReflection Step = "reflection"
	StepSubmitted  Step = "submitted"
)

// Session is the state record of one interactive submission flow. It lives
// in memory only and is discarded on reset or process restart. Transition
// methods on Service take the current record and return the updated one;
// the record itself is passed and stored by value.
type Session struct {
	ID   string `json:"id"`
	Step Step   `json:"step"`

	StudentName string `json:"student_name"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Story       string `json:"story"`

	WeekNumber int    `json:"week_number"`
	WeekLabel  string `json:"week_label"`

	// cached classifier output, index order preserved
	Sentences []Sentence `json:"sentences"`

	// review state, frozen at the Analysis -> Reflection transition
	Agreements []bool  `json:"agreements"`
	Comment    string  `json:"comment"`
	Summary    Summary `json:"summary"`

	Reflection   string `json:"reflection"`
	SubmissionID int    `json:"submission_id"`

	CreatedAt time.Time `json:"created_at"`
}

func newSession() Session {
	return Session{
		ID:        uuid.New().String(),
		Step:      StepInput,
		CreatedAt: time.Now().UTC(),
	}
}

// requireStep guards a transition; a mismatch is user-correctable.
func (s Session) requireStep(step Step) error {
	if s.Step != step {
		return core.NewValidationError(
			errInvalidStep{want: step, got: s.Step},
			core.FieldError{Field: "session_id", Error: errInvalidStep{want: step, got: s.Step}.Error()},
		)
	}
	return nil
}

type errInvalidStep struct {
	want, got Step
}

func (e errInvalidStep) Error() string {
	return "this action requires the " + string(e.want) + " step (session is at " + string(e.got) + ")"
}

// SessionStore keeps in-flight sessions, keyed by session ID.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]Session)}
}

func (st *SessionStore) Get(id string) (Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	sess, ok := st.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (st *SessionStore) Put(sess Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID] = sess
}

func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
