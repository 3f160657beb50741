package gorouter

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/commands"
	"github.com/goliatone/go-attendance/components/attendance/httpapi"
	"github.com/goliatone/go-attendance/components/attendance/queries"
)

// NotificationSource streams notification lifecycle events.
type NotificationSource interface {
	Subscribe() (<-chan attendance.NotificationEvent, func())
}

// Config wires go-router with the attendance console.
type Config[T any] struct {
	Router        router.Router[T]
	API           httpapi.Executor
	Notifications NotificationSource
	Messages      *attendance.Messages
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for console endpoints. An
// empty HTML path serves the page at the base path.
type RouteConfig struct {
	HTML      string
	State     string
	Actions   string
	WebSocket string
}

// Register mounts console routes (HTML, JSON, actions, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/console"
	}
	page, err := newConsolePage(cfg.Messages, base+routes.Actions, base+routes.WebSocket)
	if err != nil {
		return err
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		snap, err := cfg.API.State(ctx.Context(), queries.ViewRequest{})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		html, err := page.Render(snap)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(html)
	}))

	group.Get(routes.State, router.WrapHandler(func(ctx router.Context) error {
		snap, err := cfg.API.State(ctx.Context(), queries.ViewRequest{OmitCharts: true})
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, snap)
	}))

	registerActions(group, cfg.API, routes.Actions)

	if cfg.Notifications != nil {
		registerWebSocket(group, cfg.Notifications, routes.WebSocket)
	}
	return nil
}

type action func(ctx router.Context) error

func registerActions[T any](r router.Router[T], api httpapi.Executor, prefix string) {
	post := func(path string, run action) {
		r.Post(prefix+path, router.WrapHandler(func(ctx router.Context) error {
			if err := run(ctx); err != nil {
				return respondError(ctx, statusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
		}))
	}

	post("/login", func(ctx router.Context) error {
		return api.Login(ctx.Context(), attendance.Credentials{
			Username: strings.TrimSpace(ctx.FormValue("username")),
			Password: ctx.FormValue("password"),
		})
	})
	post("/register", func(ctx router.Context) error {
		return api.Register(ctx.Context(), attendance.RegisterRequest{
			Username:  strings.TrimSpace(ctx.FormValue("username")),
			Email:     strings.TrimSpace(ctx.FormValue("email")),
			FullName:  strings.TrimSpace(ctx.FormValue("full_name")),
			Role:      attendance.Role(ctx.FormValue("role")),
			Password:  ctx.FormValue("password"),
			StudentID: strings.TrimSpace(ctx.FormValue("student_id")),
		})
	})
	post("/logout", func(ctx router.Context) error {
		return api.Logout(ctx.Context())
	})
	post("/page", func(ctx router.Context) error {
		return api.ShowPage(ctx.Context(), commands.ShowPageInput{Page: attendance.Page(ctx.FormValue("page"))})
	})

	// Static course paths are registered before the :id routes so they win.
	post("/courses/join", func(ctx router.Context) error {
		return api.Join(ctx.Context(), commands.JoinCourseInput{JoinCode: ctx.FormValue("join_code")})
	})
	post("/courses/new", func(ctx router.Context) error {
		return api.OpenCreateCourse(ctx.Context())
	})
	post("/courses", func(ctx router.Context) error {
		return api.CreateCourse(ctx.Context(), courseInput(ctx))
	})
	post("/courses/:id", func(ctx router.Context) error {
		id, err := idParam(ctx)
		if err != nil {
			return err
		}
		return api.UpdateCourse(ctx.Context(), commands.UpdateCourseInput{CourseID: id, Course: courseInput(ctx)})
	})
	courseAction := func(run func(ctx router.Context, ref commands.CourseRef) error) action {
		return func(ctx router.Context) error {
			id, err := idParam(ctx)
			if err != nil {
				return err
			}
			return run(ctx, commands.CourseRef{CourseID: id})
		}
	}
	post("/courses/:id/leave", courseAction(func(ctx router.Context, ref commands.CourseRef) error {
		return api.Leave(ctx.Context(), ref)
	}))
	post("/courses/:id/details", courseAction(func(ctx router.Context, ref commands.CourseRef) error {
		return api.ViewCourse(ctx.Context(), ref)
	}))
	post("/courses/:id/students", courseAction(func(ctx router.Context, ref commands.CourseRef) error {
		return api.ViewStudents(ctx.Context(), ref)
	}))
	post("/courses/:id/edit", courseAction(func(ctx router.Context, ref commands.CourseRef) error {
		return api.EditCourse(ctx.Context(), ref)
	}))

	post("/forms/new", func(ctx router.Context) error {
		return api.OpenCreateForm(ctx.Context())
	})
	post("/forms", func(ctx router.Context) error {
		courseID, _ := strconv.Atoi(ctx.FormValue("course_id"))
		return api.CreateForm(ctx.Context(), attendance.FormInput{
			Title:       strings.TrimSpace(ctx.FormValue("title")),
			CourseID:    courseID,
			Date:        ctx.FormValue("form_date"),
			StartTime:   ctx.FormValue("start_time"),
			EndTime:     ctx.FormValue("end_time"),
			Description: ctx.FormValue("description"),
		})
	})
	post("/forms/:id/open", func(ctx router.Context) error {
		id, err := idParam(ctx)
		if err != nil {
			return err
		}
		return api.OpenSubmit(ctx.Context(), commands.FormRef{FormID: id})
	})
	post("/forms/:id/submit", func(ctx router.Context) error {
		id, err := idParam(ctx)
		if err != nil {
			return err
		}
		return api.Submit(ctx.Context(), commands.SubmitAttendanceInput{
			FormID: id,
			Submission: attendance.SubmissionInput{
				Status: attendance.Status(ctx.FormValue("status")),
				Notes:  ctx.FormValue("notes"),
			},
		})
	})

	post("/chart", func(ctx router.Context) error {
		return api.SwitchChart(ctx.Context(), commands.SwitchChartInput{Kind: attendance.ChartKind(ctx.FormValue("kind"))})
	})
	post("/theme", func(ctx router.Context) error {
		return api.Theme(ctx.Context(), commands.ThemeInput{Theme: attendance.Theme(ctx.FormValue("theme"))})
	})
	post("/modal/close", func(ctx router.Context) error {
		return api.CloseModal(ctx.Context())
	})
}

func registerWebSocket[T any](r router.Router[T], source NotificationSource, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := source.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func courseInput(ctx router.Context) attendance.CourseInput {
	return attendance.CourseInput{
		Code:        strings.TrimSpace(ctx.FormValue("course_code")),
		Name:        strings.TrimSpace(ctx.FormValue("course_name")),
		Description: ctx.FormValue("description"),
	}
}

func idParam(ctx router.Context) (int, error) {
	raw := ctx.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", attendance.ErrValidation, raw)
	}
	return id, nil
}

func statusFor(err error) int {
	var apiErr *attendance.APIError
	switch {
	case errors.Is(err, attendance.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, attendance.ErrValidation), errors.Is(err, attendance.ErrUnknownChart):
		return http.StatusBadRequest
	case errors.Is(err, httpapi.ErrNotConfigured):
		return http.StatusNotImplemented
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case attendance.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.State == "" {
		routes.State = "/_state"
	}
	if routes.Actions == "" {
		routes.Actions = "/actions"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
