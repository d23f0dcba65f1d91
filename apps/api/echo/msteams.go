package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

type instanceApi struct {
	svc        *msteams.Service
	courseRepo course.Repository
	eventRepo  calendar.EventRepository
	conf       *core.Config
}

func registerInstanceAPI(app *echo.Echo, v1 *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := instanceApi{
		svc:        deps.InstanceSvc,
		courseRepo: deps.CourseRepo,
		eventRepo:  deps.EventRepo,
		conf:       deps.Conf,
	}

	// the module's only user-facing page
	app.GET("/msteams/view", api.view, jwt)

	mg := v1.Group("/msteams", jwt)
	mg.GET("/features", api.features)
	mg.POST("", api.instanceCreate)
	mg.GET("", api.instanceQuery)
	mg.GET("/:id", api.instanceRetrieve)
	mg.PUT("/:id", api.instanceUpdate)
	mg.DELETE("/:id", api.instanceDestroy)

	cg := v1.Group("/course-modules/:id", jwt)
	cg.GET("/info", api.moduleInfo)
	cg.GET("/contents", api.moduleContents)
	cg.GET("/updates", api.moduleUpdates)

	v1.GET("/events/:id/action", api.eventAction, jwt)
}

// Handlers

func (api *instanceApi) features(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"archetype": msteams.Archetype(),
		"features":  msteams.Features(),
	})
}

func (api *instanceApi) instanceCreate(ctx echo.Context) error {
	data := new(msteams.NewInstance)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	inst, err := api.svc.AddInstance(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, inst)
}

func (api *instanceApi) instanceQuery(ctx echo.Context) error {
	courseID := ctx.QueryParam("course_id")
	if courseID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: "this query parameter is required"})
	}

	instances, err := api.svc.QueryCourse(ctx.Request().Context(), courseID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, instances)
}

func (api *instanceApi) instanceRetrieve(ctx echo.Context) error {
	inst, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *instanceApi) instanceUpdate(ctx echo.Context) error {
	data := new(msteams.UpdateInstance)
	if err := ctx.Bind(data); err != nil {
		return err
	}

	inst, err := api.svc.UpdateInstance(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, inst)
}

func (api *instanceApi) instanceDestroy(ctx echo.Context) error {
	if err := api.svc.DeleteInstance(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *instanceApi) moduleInfo(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	cm, err := api.courseRepo.GetCourseModuleByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	info, err := api.svc.CourseModuleInfo(reqCtx, cm)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, info)
}

func (api *instanceApi) moduleContents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	cm, err := api.courseRepo.GetCourseModuleByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	contents, err := api.svc.ExportContents(reqCtx, cm, api.conf.FrontendBaseURL)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, contents)
}

func (api *instanceApi) moduleUpdates(ctx echo.Context) error {
	since, err := time.Parse(time.RFC3339, ctx.QueryParam("since"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "since", Error: "must be a valid RFC 3339 timestamp"})
	}

	reqCtx := ctx.Request().Context()
	cm, err := api.courseRepo.GetCourseModuleByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	status, err := api.svc.CheckUpdatesSince(reqCtx, cm, since)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, status)
}

func (api *instanceApi) eventAction(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	evt, err := api.eventRepo.GetEventByID(reqCtx, ctx.Param("id"))
	if err != nil {
		return err
	}
	action, err := api.svc.CalendarEventAction(reqCtx, evt, claims.Subject)
	if err != nil {
		return err
	}
	if action == nil { // already completed
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, action)
}

// view records the visit (event + completion) and either redirects the
// browser to the external URL or returns the instance.
func (api *instanceApi) view(ctx echo.Context) error {
	id := ctx.QueryParam("id")
	if id == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "id", Error: "this query parameter is required"})
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	cm, err := api.courseRepo.GetCourseModuleByID(reqCtx, id)
	if err != nil {
		return err
	}
	inst, err := api.svc.GetByCourseModule(reqCtx, cm.ID)
	if err != nil {
		return err
	}
	crs, err := api.courseRepo.GetCourseByID(reqCtx, cm.CourseID)
	if err != nil {
		return err
	}

	if err = api.svc.View(reqCtx, inst, crs, cm, claims.Subject); err != nil {
		return err
	}

	if ctx.QueryParam("redirect") == "1" {
		return ctx.Redirect(http.StatusSeeOther, inst.ExternalURL)
	}
	return ctx.JSON(http.StatusOK, inst)
}
