package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core"
	"github.com/datastorylab/showtell/core/story"
)

type adminApi struct {
	svc      *story.Service
	conf     *core.Config
	validate *validator.Validate
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *story.Service, conf *core.Config, validate *validator.Validate) {
	api := adminApi{
		svc:      svc,
		conf:     conf,
		validate: validate,
	}

	ag := g.Group("/admin")
	ag.POST("/unlock", api.unlock)

	authed := ag.Group("", jwt, adminMiddleware())
	authed.PUT("/week", api.setWeek)
	authed.DELETE("/week", api.clearWeek)
	authed.GET("/submissions", api.querySubmissions)
	authed.GET("/submissions/:id", api.getSubmission)
}

type (
	UnlockRequest struct {
		Key string `json:"key" validate:"required"`
	}

	UnlockResponse struct {
		Token string `json:"token"`
	}

	SetWeekRequest struct {
		WeekNumber int    `json:"week_number" validate:"required,min=1"`
		Label      string `json:"label"`
	}

	SubmissionDetailResponse struct {
		Submission story.Submission       `json:"submission"`
		Sentences  []story.SentenceRecord `json:"sentences"`
	}
)

// Handlers

func (api *adminApi) unlock(ctx echo.Context) error {
	var data UnlockRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UnlockRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := unlock(data.Key, api.conf)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims, api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, UnlockResponse{Token: token})
}

func (api *adminApi) setWeek(ctx echo.Context) error {
	var data SetWeekRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetWeekRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	week, err := api.svc.SetWeekOverride(ctx.Request().Context(), data.WeekNumber, data.Label)
	if err != nil {
		return errors.Wrap(err, "overriding week")
	}
	return ctx.JSON(http.StatusOK, week)
}

func (api *adminApi) clearWeek(ctx echo.Context) error {
	api.svc.ClearWeekOverride()
	return ctx.JSON(http.StatusOK, api.svc.CurrentWeek())
}

func (api *adminApi) querySubmissions(ctx echo.Context) error {
	var filter story.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	var ord Ordering
	ord.Bind(ctx)

	subs, err := api.svc.QuerySubmissions(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []story.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *adminApi) getSubmission(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	sub, sentences, err := api.svc.GetSubmission(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting submission")
	}
	if sentences == nil {
		sentences = []story.SentenceRecord{}
	}
	return ctx.JSON(http.StatusOK, SubmissionDetailResponse{Submission: sub, Sentences: sentences})
}
