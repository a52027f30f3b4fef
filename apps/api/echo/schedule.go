package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/schedule"
)

type scheduleApi struct {
	svc *schedule.Service
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *schedule.Service) {
	api := scheduleApi{svc: svc}

	cg := g.Group("/calendar", jwt, adminMiddleware())
	cg.POST("/ensure", api.ensureCalendar)

	tg := g.Group("/timetables", jwt, adminMiddleware())
	tg.POST("", api.createTimeTable)
	tg.PUT("/:id", api.updateTimeTable)

	sg := g.Group("/sessions", jwt)
	sg.POST("/generate", api.generate, adminMiddleware())
	sg.GET("/:id", api.retrieve, professorMiddleware())
	sg.POST("/:id/code", api.issueCode, professorMiddleware())
	sg.POST("/:id/code/rotate", api.rotateCode, professorMiddleware())
}

func (api *scheduleApi) ensureCalendar(ctx echo.Context) error {
	var data CalendarRangeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CalendarRangeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	created, err := api.svc.EnsureCalendarRange(ctx.Request().Context(), data.Start(), data.End())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"created": created})
}

func (api *scheduleApi) generate(ctx echo.Context) error {
	var data GenerateSessionsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GenerateSessionsRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	var created []schedule.Session
	var err error
	rctx := ctx.Request().Context()
	switch data.Scope {
	case scopeTimeTable:
		created, err = api.svc.GenerateForTimeTable(rctx, data.ID, data.Start(), data.End())
	case scopeAssignment:
		created, err = api.svc.GenerateForAssignment(rctx, data.ID, data.Start(), data.End())
	case scopeSemester:
		created, err = api.svc.GenerateForSemester(rctx, data.ID)
	case scopeClass:
		created, err = api.svc.GenerateForClass(rctx, data.ID, data.Start(), data.End())
	case scopeInstitution:
		created, err = api.svc.GenerateForInstitution(rctx, data.ID, data.Start(), data.End())
	}
	if err != nil {
		return err
	}

	sessionsGenerated.Add(float64(len(created)))
	if created == nil {
		created = []schedule.Session{}
	}
	return ctx.JSON(http.StatusCreated, created)
}

func (api *scheduleApi) createTimeTable(ctx echo.Context) error {
	var data TimeTableRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TimeTableRequest")
	}
	tt, err := data.timeTable()
	if err != nil {
		return err
	}

	tt, err = api.svc.CreateTimeTable(ctx.Request().Context(), tt)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tt)
}

func (api *scheduleApi) updateTimeTable(ctx echo.Context) error {
	var data TimeTableRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TimeTableRequest")
	}
	tt, err := data.timeTable()
	if err != nil {
		return err
	}
	tt.ID = ctx.Param("id")

	tt, err = api.svc.UpdateTimeTable(ctx.Request().Context(), tt)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *scheduleApi) issueCode(ctx echo.Context) error {
	sess, err := api.svc.IssueCode(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionCodeResponse{
		SessionID:    sess.ID,
		Code:         sess.Code,
		CodeIssuedAt: sess.CodeIssuedAt,
	})
}

func (api *scheduleApi) rotateCode(ctx echo.Context) error {
	sess, err := api.svc.RotateCode(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SessionCodeResponse{
		SessionID:    sess.ID,
		Code:         sess.Code,
		CodeIssuedAt: sess.CodeIssuedAt,
	})
}

const (
	scopeTimeTable   = "timetable"
	scopeAssignment  = "assignment"
	scopeSemester    = "semester"
	scopeClass       = "class"
	scopeInstitution = "institution"
)

type (
	CalendarRangeRequest struct {
		StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
		EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	}

	GenerateSessionsRequest struct {
		Scope     string `json:"scope" validate:"required,oneof=timetable assignment semester class institution"`
		ID        string `json:"id" validate:"required,uuid4"`
		StartDate string `json:"start_date" validate:"required_unless=Scope semester,omitempty,datetime=2006-01-02"`
		EndDate   string `json:"end_date" validate:"required_unless=Scope semester,omitempty,datetime=2006-01-02"`
	}

	TimeTableRequest struct {
		AssignmentID string `json:"assignment_id" validate:"required,uuid4"`
		Weekday      *int   `json:"weekday" validate:"omitempty,min=0,max=6"`
		StartTime    string `json:"start_time" validate:"required"`
		EndTime      string `json:"end_time" validate:"required"`
	}

	SessionCodeResponse struct {
		SessionID    string    `json:"session_id"`
		Code         string    `json:"code"`
		CodeIssuedAt time.Time `json:"code_issued_at"`
	}
)

func parseDate(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func (cr *CalendarRangeRequest) Validate() error {
	return core.Validate.Struct(cr)
}

func (cr *CalendarRangeRequest) Start() time.Time { return parseDate(cr.StartDate) }
func (cr *CalendarRangeRequest) End() time.Time   { return parseDate(cr.EndDate) }

func (gr *GenerateSessionsRequest) Validate() error {
	gr.Scope = core.CleanString(gr.Scope, true)
	return core.Validate.Struct(gr)
}

func (gr *GenerateSessionsRequest) Start() time.Time { return parseDate(gr.StartDate) }
func (gr *GenerateSessionsRequest) End() time.Time   { return parseDate(gr.EndDate) }

// timeTable validates the request and maps it to the domain model.
func (tr *TimeTableRequest) timeTable() (schedule.TimeTable, error) {
	if err := core.Validate.Struct(tr); err != nil {
		return schedule.TimeTable{}, err
	}
	start, err := schedule.ParseTimeOfDay(tr.StartTime)
	if err != nil {
		return schedule.TimeTable{}, err
	}
	end, err := schedule.ParseTimeOfDay(tr.EndTime)
	if err != nil {
		return schedule.TimeTable{}, err
	}
	tt := schedule.TimeTable{
		AssignmentID: tr.AssignmentID,
		StartTime:    start,
		EndTime:      end,
	}
	if tr.Weekday != nil {
		wd := time.Weekday(*tr.Weekday)
		tt.Weekday = &wd
	}
	return tt, nil
}
