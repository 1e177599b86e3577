package story

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core"
)

// Service coordinates the submission workflow: classifier, repository, week
// gate and mailer. One instance serves all sessions.
type Service struct {
	repo       Repository
	classifier Classifier
	mailSvc    core.EmailService
	weeks      *WeekGate
	sessions   *SessionStore
	conf       *core.Config
	logger     core.Logger
}

func NewService(
	repo Repository,
	classifier Classifier,
	mailSvc core.EmailService,
	weeks *WeekGate,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		classifier: classifier,
		mailSvc:    mailSvc,
		weeks:      weeks,
		sessions:   NewSessionStore(),
		conf:       conf,
		logger:     logger,
	}
}

// Analyze performs the Input -> Analysis transition: it resolves the Student
// and the active Week, refuses duplicates for the pair, runs the classifier
// and caches its ordered output in a new session.
func (svc *Service) Analyze(ctx context.Context, ns NewStory) (Session, error) {
	ns.Clean()

	student, weekID, weekNumber, weekLabel, err := svc.resolve(ctx, ns.StudentName, ns.Email)
	if err != nil {
		return Session{}, err
	}

	exists, err := svc.repo.SubmissionExists(ctx, student.ID, weekID)
	if err != nil {
		return Session{}, errors.Wrap(err, "checking for an existing submission")
	}
	if exists {
		return Session{}, core.NewValidationError(ErrDuplicateSubmission,
			core.FieldError{Field: "email", Error: ErrDuplicateSubmission.Error()})
	}

	sentences, err := svc.classifier.Classify(ctx, ns.Story)
	if err != nil {
		return Session{}, errors.Wrap(err, "classifying story")
	}
	if err := CheckSentences(sentences); err != nil {
		return Session{}, err
	}

	sess := newSession()
	sess.Step = StepAnalysis
	sess.StudentName = ns.StudentName
	sess.Email = ns.Email
	sess.Title = ns.Title
	sess.Story = ns.Story
	sess.WeekNumber = weekNumber
	sess.WeekLabel = weekLabel
	sess.Sentences = sentences

	svc.sessions.Put(sess)
	return sess, nil
}

// Review performs the Analysis -> Reflection transition: the per-sentence
// agreement checkboxes and the free-text comment are frozen and the tallies
// computed deterministically from them.
func (svc *Service) Review(sessionID string, agreements []bool, comment string) (Session, error) {
	sess, err := svc.sessions.Get(sessionID)
	if err != nil {
		return Session{}, err
	}
	if err := sess.requireStep(StepAnalysis); err != nil {
		return Session{}, err
	}
	if len(agreements) != len(sess.Sentences) {
		msg := fmt.Sprintf("expected %d agreement values, got %d", len(sess.Sentences), len(agreements))
		return Session{}, core.NewValidationError(errors.New(msg),
			core.FieldError{Field: "agreements", Error: msg})
	}

	sess.Agreements = agreements
	sess.Comment = core.CleanString(comment)
	sess.Summary = Tally(sess.Sentences, agreements)
	sess.Step = StepReflection

	svc.sessions.Put(sess)
	return sess, nil
}

// Submit performs the Reflection -> Submitted transition: it re-resolves the
// Student and Week, re-checks for a duplicate created in the meantime, writes
// the submission and all sentence rows in one transaction and then sends the
// feedback email. A failed email never undoes the committed write; emailSent
// reports the outcome distinctly.
func (svc *Service) Submit(ctx context.Context, sessionID, reflection string) (sess Session, emailSent bool, err error) {
	sess, err = svc.sessions.Get(sessionID)
	if err != nil {
		return Session{}, false, err
	}
	if err = sess.requireStep(StepReflection); err != nil {
		return Session{}, false, err
	}

	student, weekID, _, _, err := svc.resolve(ctx, sess.StudentName, sess.Email)
	if err != nil {
		return Session{}, false, err
	}
	exists, err := svc.repo.SubmissionExists(ctx, student.ID, weekID)
	if err != nil {
		return Session{}, false, errors.Wrap(err, "re-checking for an existing submission")
	}
	if exists {
		return Session{}, false, core.NewValidationError(ErrDuplicateSubmission,
			core.FieldError{Field: "email", Error: ErrDuplicateSubmission.Error()})
	}

	sess.Reflection = core.CleanString(reflection)

	sub := Submission{
		StudentID:      student.ID,
		WeekID:         weekID,
		StudentName:    sess.StudentName,
		Email:          sess.Email,
		Title:          sess.Title,
		Story:          sess.Story,
		TotalSentences: sess.Summary.TotalSentences,
		ShowSentences:  sess.Summary.ShowSentences,
		TellSentences:  sess.Summary.TellSentences,
		Reflection:     sess.Reflection,
		Comments:       sess.Comment,
		AgreedShow:     sess.Summary.AgreedShow,
		AgreedTell:     sess.Summary.AgreedTell,
		DisagreedShow:  sess.Summary.DisagreedShow,
		DisagreedTell:  sess.Summary.DisagreedTell,
	}
	records := make([]SentenceRecord, 0, len(sess.Sentences))
	for i, s := range sess.Sentences {
		records = append(records, SentenceRecord{
			WeekID: weekID,
			Index:  s.Index,
			Text:   s.Text,
			Label:  s.Label,
			Agree:  sess.Agreements[i],
		})
	}

	sub, err = svc.repo.CreateSubmission(ctx, sub, records)
	if err != nil {
		if errors.Cause(err) == ErrDuplicateSubmission {
			return Session{}, false, core.NewValidationError(ErrDuplicateSubmission,
				core.FieldError{Field: "email", Error: ErrDuplicateSubmission.Error()})
		}
		return Session{}, false, errors.Wrap(err, "saving submission")
	}

	emailSent = true
	if mailErr := svc.sendFeedback(sub, sess); mailErr != nil {
		emailSent = false
		svc.logger.Error(fmt.Sprintf("sending feedback email for submission %d: %v", sub.ID, mailErr), mailErr)
	}

	sess.Step = StepSubmitted
	sess.SubmissionID = sub.ID
	svc.sessions.Put(sess)
	return sess, emailSent, nil
}

// Reset clears a session unconditionally, from any step.
func (svc *Service) Reset(sessionID string) {
	svc.sessions.Delete(sessionID)
}

func (svc *Service) GetSession(sessionID string) (Session, error) {
	return svc.sessions.Get(sessionID)
}

// CurrentWeek returns the active submission week.
func (svc *Service) CurrentWeek() Week {
	number, label := svc.weeks.Current()
	return Week{Number: number, Label: label}
}

// SetWeekOverride pins the active week (admin only) and records the week row.
func (svc *Service) SetWeekOverride(ctx context.Context, number int, label string) (Week, error) {
	week, err := svc.repo.UpsertWeek(ctx, number, label)
	if err != nil {
		return Week{}, errors.Wrap(err, "recording week")
	}
	svc.weeks.Override(week.Number, week.Label)
	return week, nil
}

// ClearWeekOverride resyncs the active week to the configured default.
func (svc *Service) ClearWeekOverride() {
	svc.weeks.Clear()
}

func (svc *Service) QuerySubmissions(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Submission, error) {
	filter.Clean()
	return svc.repo.QuerySubmissions(ctx, filter, ordering)
}

func (svc *Service) GetSubmission(ctx context.Context, id int) (Submission, []SentenceRecord, error) {
	sub, err := svc.repo.GetSubmission(ctx, id)
	if err != nil {
		return Submission{}, nil, err
	}
	sentences, err := svc.repo.GetSentences(ctx, id)
	if err != nil {
		return Submission{}, nil, errors.Wrap(err, "loading sentences")
	}
	return sub, sentences, nil
}

// resolve upserts the student and the active week and returns both sides of
// the (student, week) pair.
func (svc *Service) resolve(ctx context.Context, fullName, email string) (student Student, weekID, weekNumber int, weekLabel string, err error) {
	weekNumber, weekLabel = svc.weeks.Current()

	student, err = svc.repo.UpsertStudent(ctx, fullName, email)
	if err != nil {
		return Student{}, 0, 0, "", errors.Wrap(err, "resolving student")
	}
	week, err := svc.repo.UpsertWeek(ctx, weekNumber, weekLabel)
	if err != nil {
		return Student{}, 0, 0, "", errors.Wrap(err, "resolving week")
	}
	return student, week.ID, week.Number, week.Label, nil
}

// Tally derives the summary counts from the cached classifier output and the
// student's agreement checkboxes. len(agreements) must equal len(sentences).
func Tally(sentences []Sentence, agreements []bool) Summary {
	var sum Summary
	sum.TotalSentences = len(sentences)
	for i, s := range sentences {
		agree := agreements[i]
		switch s.Label {
		case LabelShow:
			sum.ShowSentences++
			if agree {
				sum.AgreedShow++
			} else {
				sum.DisagreedShow++
			}
		case LabelTell:
			sum.TellSentences++
			if agree {
				sum.AgreedTell++
			} else {
				sum.DisagreedTell++
			}
		}
	}
	return sum
}

type (
	feedbackSentence struct {
		Label Label
		Text  string
		Agree bool
	}

	feedbackData struct {
		StudentName string
		Title       string
		Summary     Summary
		Changed     int // sentences the student disagreed on
		Sentences   []feedbackSentence
		Comment     string
		Reflection  string
	}
)

func (svc *Service) sendFeedback(sub Submission, sess Session) error {
	data := feedbackData{
		StudentName: sub.StudentName,
		Title:       sub.Title,
		Summary:     sess.Summary,
		Changed:     sess.Summary.DisagreedShow + sess.Summary.DisagreedTell,
		Comment:     sub.Comments,
		Reflection:  sub.Reflection,
	}
	for i, s := range sess.Sentences {
		data.Sentences = append(data.Sentences, feedbackSentence{
			Label: s.Label,
			Text:  s.Text,
			Agree: sess.Agreements[i],
		})
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: sub.StudentName, Address: sub.Email}},
		Subject:      "Feedback for Your Data Story: " + sub.Title,
		TemplateName: "feedback",
		TemplateData: data,
	}
	return svc.mailSvc.SendMessage(msg)
}
