package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core/story"
)

type storyApi struct {
	svc      *story.Service
	validate *validator.Validate
}

func registerStoryAPI(g *echo.Group, svc *story.Service, validate *validator.Validate) {
	api := storyApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/stories")
	sg.POST("/analyze", api.analyze)
	sg.POST("/review", api.review)
	sg.POST("/submit", api.submit)
	sg.POST("/reset", api.reset)
	sg.GET("/session/:id", api.session)

	g.GET("/weeks/current", api.currentWeek)
}

type (
	// requests
	ReviewRequest struct {
		SessionID  string `json:"session_id" validate:"required"`
		Agreements []bool `json:"agreements" validate:"required"`
		Comment    string `json:"comment"`
	}

	SubmitRequest struct {
		SessionID  string `json:"session_id" validate:"required"`
		Reflection string `json:"reflection"`
	}

	ResetRequest struct {
		SessionID string `json:"session_id" validate:"required"`
	}

	// responses
	AnalyzeResponse struct {
		SessionID  string           `json:"session_id"`
		Step       story.Step       `json:"step"`
		WeekNumber int              `json:"week_number"`
		WeekLabel  string           `json:"week_label"`
		Sentences  []story.Sentence `json:"sentences"`
	}

	ReviewResponse struct {
		SessionID string        `json:"session_id"`
		Step      story.Step    `json:"step"`
		Summary   story.Summary `json:"summary"`
	}

	SubmitResponse struct {
		SessionID    string     `json:"session_id"`
		Step         story.Step `json:"step"`
		SubmissionID int        `json:"submission_id"`
		EmailSent    bool       `json:"email_sent"`
		Message      string     `json:"message"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

// Handlers

func (api *storyApi) analyze(ctx echo.Context) error {
	var data story.NewStory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStory")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.Analyze(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "analyzing story")
	}

	return ctx.JSON(http.StatusOK, AnalyzeResponse{
		SessionID:  sess.ID,
		Step:       sess.Step,
		WeekNumber: sess.WeekNumber,
		WeekLabel:  sess.WeekLabel,
		Sentences:  sess.Sentences,
	})
}

func (api *storyApi) review(ctx echo.Context) error {
	var data ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sess, err := api.svc.Review(data.SessionID, data.Agreements, data.Comment)
	if err != nil {
		return errors.Wrap(err, "reviewing analysis")
	}

	return ctx.JSON(http.StatusOK, ReviewResponse{
		SessionID: sess.ID,
		Step:      sess.Step,
		Summary:   sess.Summary,
	})
}

func (api *storyApi) submit(ctx echo.Context) error {
	var data SubmitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sess, emailSent, err := api.svc.Submit(ctx.Request().Context(), data.SessionID, data.Reflection)
	if err != nil {
		return errors.Wrap(err, "submitting story")
	}

	msg := "Feedback submitted and email sent!"
	if !emailSent {
		msg = "Feedback submitted, but the email could not be sent."
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{
		SessionID:    sess.ID,
		Step:         sess.Step,
		SubmissionID: sess.SubmissionID,
		EmailSent:    emailSent,
		Message:      msg,
	})
}

func (api *storyApi) reset(ctx echo.Context) error {
	var data ResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	api.svc.Reset(data.SessionID)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Session cleared."})
}

func (api *storyApi) session(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *storyApi) currentWeek(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.CurrentWeek())
}
