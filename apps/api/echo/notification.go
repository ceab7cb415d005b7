package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hapiedu/hapi/core"
	"github.com/hapiedu/hapi/core/notification"
)

type notificationApi struct {
	svc      *notification.Service
	logger   core.Logger
	validate *validator.Validate
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := notificationApi{
		svc:      deps.NotifSvc,
		logger:   deps.Logger,
		validate: deps.Validate,
	}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("/:id/read", api.markRead)
	ng.GET("/preferences", api.getPreferences)
	ng.PUT("/preferences", api.updatePreferences)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	ns, err := api.svc.ListNotifications(ctx.Request().Context(), claims.Subject, limit)
	if err != nil {
		return errors.Wrap(err, "listing notifications")
	}
	return ctx.JSON(http.StatusOK, ns)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		if errors.Cause(err) == notification.ErrNotificationNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificationApi) getPreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	pref, err := api.svc.GetPreference(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting notification preference")
	}
	return ctx.JSON(http.StatusOK, pref)
}

func (api *notificationApi) updatePreferences(ctx echo.Context) error {
	var data notification.UpdatePreferenceInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePreferenceInput")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	pref, err := api.svc.GetPreference(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "getting notification preference")
	}
	pref, err = api.svc.UpdatePreference(ctx.Request().Context(), data.Apply(pref))
	if err != nil {
		return errors.Wrap(err, "updating notification preference")
	}
	return ctx.JSON(http.StatusOK, pref)
}
