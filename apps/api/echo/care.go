package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/risk"
)

type careApi struct {
	svc      *risk.Service
	conf     *core.Config
	logger   core.Logger
	validate *validator.Validate
	cache    *rosterCache
}

func registerCareAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := careApi{
		svc:      deps.RiskSvc,
		conf:     deps.Conf,
		logger:   deps.Logger,
		validate: deps.Validate,
		cache:    newRosterCache(),
	}

	cg := g.Group("/care", jwt, teacherMiddleware())
	cg.GET("/at-risk", api.atRiskRoster)
	cg.GET("/at-risk/counts", api.atRiskCounts)
	cg.GET("/students/:id/emotional", api.emotionalRisk)
	cg.GET("/students/:id/academic", api.academicRisk)
	cg.POST("/alerts/:id/acknowledge", api.acknowledgeAlert)
	cg.POST("/interventions", api.logIntervention)
}

// Handlers

type rosterResult struct {
	roster []risk.AtRiskStudent
	err    error
}

// atRiskRoster builds the at-risk roster for the authenticated teacher,
// optionally restricted via ?class_id=. Builds that exceed the configured
// deadline fall back to the last cached roster when one exists.
func (api *careApi) atRiskRoster(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	teacherID := claims.Subject
	classID := ctx.QueryParam("class_id")

	buildCtx, cancel := context.WithTimeout(ctx.Request().Context(), api.conf.Care.RosterTimeout)
	defer cancel()

	resCh := make(chan rosterResult, 1)
	go func() {
		roster, err := api.svc.DetectAtRiskStudents(buildCtx, teacherID, classID)
		resCh <- rosterResult{roster: roster, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return errors.Wrap(res.err, "building at-risk roster")
		}
		api.cache.Set(teacherID, classID, res.roster)
		return ctx.JSON(http.StatusOK, res.roster)

	case <-buildCtx.Done():
		if roster, ok := api.cache.Get(teacherID, classID); ok {
			api.logger.Warn(fmt.Sprintf("care: roster build timed out for teacher %s; serving cached roster", teacherID))
			return ctx.JSON(http.StatusOK, roster)
		}
		return echo.NewHTTPError(http.StatusGatewayTimeout, "roster build timed out")
	}
}

func (api *careApi) atRiskCounts(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	counts, err := api.svc.Counts(ctx.Request().Context(), claims.Subject, ctx.QueryParam("class_id"))
	if err != nil {
		return errors.Wrap(err, "counting at-risk students")
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *careApi) emotionalRisk(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if studentID == "" {
		return errHttpNotFound
	}

	verdict := api.svc.DetectEmotionalRisk(ctx.Request().Context(), studentID, ctx.QueryParam("class_id"))
	return ctx.JSON(http.StatusOK, verdict)
}

func (api *careApi) academicRisk(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if studentID == "" {
		return errHttpNotFound
	}
	classID := ctx.QueryParam("class_id")
	if classID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "this field is required"})
	}

	verdict := api.svc.DetectAcademicRisk(ctx.Request().Context(), studentID, classID)
	return ctx.JSON(http.StatusOK, verdict)
}

func (api *careApi) acknowledgeAlert(ctx echo.Context) error {
	alertID := ctx.Param("id")
	if err := api.svc.AcknowledgeAlert(ctx.Request().Context(), alertID); err != nil {
		if errors.Cause(err) == risk.ErrAlertNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "acknowledging alert")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *careApi) logIntervention(ctx echo.Context) error {
	var data risk.NewInterventionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInterventionInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	iv, err := api.svc.LogIntervention(ctx.Request().Context(), data.Intervention(claims.Subject))
	if err != nil {
		return errors.Wrap(err, "logging intervention")
	}
	return ctx.JSON(http.StatusCreated, iv)
}
