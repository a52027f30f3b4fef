package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/academic"
	"github.com/youbihi/attest/core/attendance"
)

type attendanceAPIDeps struct {
	svc      *attendance.Service
	academic *academic.Service
	rateSvc  *tokenBucket
}

type attendanceApi struct {
	deps attendanceAPIDeps
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps attendanceAPIDeps) {
	api := attendanceApi{deps: deps}

	ag := g.Group("/attendance", jwt)

	// student routes; the acting student is resolved from the JWT subject
	ag.POST("/tokens", api.requestToken, studentMiddleware(), deps.rateSvc.middleware())
	ag.POST("/tokens/confirm", api.confirmToken, studentMiddleware())
	ag.POST("/mark", api.markDirect, studentMiddleware())
	ag.GET("/sessions/:id/token", api.hasValidToken, studentMiddleware())
	ag.POST("/:id/justification", api.submitJustification, studentMiddleware())

	// professor routes
	ag.POST("/:id/justification/review", api.reviewJustification, professorMiddleware())
	ag.PUT("/:id/status", api.setStatus, professorMiddleware())

	// admin routes
	ag.POST("/tokens/cleanup", api.cleanupTokens, adminMiddleware())
}

func (api *attendanceApi) actingStudent(ctx echo.Context) (academic.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return academic.Student{}, err
	}
	return api.deps.academic.GetStudentForUser(ctx.Request().Context(), claims.Subject)
}

func (api *attendanceApi) actingProfessor(ctx echo.Context) (academic.Professor, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return academic.Professor{}, err
	}
	return api.deps.academic.GetProfessorForUser(ctx.Request().Context(), claims.Subject)
}

func (api *attendanceApi) requestToken(ctx echo.Context) error {
	var data TokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.actingStudent(ctx)
	if err != nil {
		return err
	}

	tok, err := api.deps.svc.RequestToken(ctx.Request().Context(), std.ID, data.SessionID, data.SessionCode, data.Latitude, data.Longitude)
	if err != nil {
		tokensRequested.WithLabelValues(outcomeRejected).Inc()
		return err
	}

	tokensRequested.WithLabelValues(outcomeOK).Inc()
	return ctx.JSON(http.StatusCreated, tok)
}

func (api *attendanceApi) confirmToken(ctx echo.Context) error {
	var data TokenConfirmRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenConfirmRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.actingStudent(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.svc.ConfirmToken(ctx.Request().Context(), std.ID, data.Token)
	if err != nil {
		tokensConfirmed.WithLabelValues(outcomeRejected).Inc()
		return err
	}

	tokensConfirmed.WithLabelValues(outcomeOK).Inc()
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) markDirect(ctx echo.Context) error {
	var data MarkDirectRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkDirectRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.actingStudent(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.svc.MarkDirect(ctx.Request().Context(), std.ID, data.SessionID, data.SessionCode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) hasValidToken(ctx echo.Context) error {
	std, err := api.actingStudent(ctx)
	if err != nil {
		return err
	}

	ok, err := api.deps.svc.HasValidToken(ctx.Request().Context(), std.ID, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"has_valid_token": ok})
}

func (api *attendanceApi) submitJustification(ctx echo.Context) error {
	var data JustificationRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JustificationRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.actingStudent(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.svc.SubmitJustification(ctx.Request().Context(), std.ID, ctx.Param("id"), data.Text)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) reviewJustification(ctx echo.Context) error {
	var data JustificationReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JustificationReviewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	prof, err := api.actingProfessor(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.svc.ReviewJustification(ctx.Request().Context(), prof.ID, ctx.Param("id"), data.Approve, data.Reason)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) setStatus(ctx echo.Context) error {
	var data SetStatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetStatusRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}
	status, err := attendance.ParseStatus(data.Status)
	if err != nil {
		return err
	}

	prof, err := api.actingProfessor(ctx)
	if err != nil {
		return err
	}

	att, err := api.deps.svc.SetStatus(ctx.Request().Context(), prof.ID, ctx.Param("id"), status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) cleanupTokens(ctx echo.Context) error {
	deleted, err := api.deps.svc.CleanupExpiredTokens(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

type (
	TokenRequest struct {
		SessionID   string   `json:"session_id" validate:"required,uuid4"`
		SessionCode string   `json:"session_code" validate:"required,len=6"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}

	TokenConfirmRequest struct {
		Token string `json:"token" validate:"required,len=8"`
	}

	MarkDirectRequest struct {
		SessionID   string `json:"session_id" validate:"required,uuid4"`
		SessionCode string `json:"session_code" validate:"required,len=6"`
	}

	JustificationRequest struct {
		Text string `json:"text" validate:"required"`
	}

	JustificationReviewRequest struct {
		Approve bool   `json:"approve"`
		Reason  string `json:"reason"`
	}

	SetStatusRequest struct {
		Status string `json:"status" validate:"required"`
	}
)

func (tr *TokenRequest) Validate() error {
	tr.SessionCode = core.CleanString(tr.SessionCode)
	return core.Validate.Struct(tr)
}

func (tc *TokenConfirmRequest) Validate() error {
	tc.Token = core.CleanString(tc.Token)
	return core.Validate.Struct(tc)
}

func (md *MarkDirectRequest) Validate() error {
	md.SessionCode = core.CleanString(md.SessionCode)
	return core.Validate.Struct(md)
}

func (jr *JustificationRequest) Validate() error {
	jr.Text = core.CleanString(jr.Text)
	return core.Validate.Struct(jr)
}

func (jr *JustificationReviewRequest) Validate() error {
	jr.Reason = core.CleanString(jr.Reason)
	return core.Validate.Struct(jr)
}

func (sr *SetStatusRequest) Validate() error {
	sr.Status = core.CleanString(sr.Status)
	return core.Validate.Struct(sr)
}
