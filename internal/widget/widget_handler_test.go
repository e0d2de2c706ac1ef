package widget_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/widget"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	widget.Service
	createEventFn  func(ctx context.Context, p contextutil.Principal, orgID string, req widget.CreateEventRequest) (widget.EventResponse, error)
	listProjectsFn func(ctx context.Context, p contextutil.Principal, orgID string, req widget.ListProjectsRequest) ([]widget.ProjectResponse, error)
	deleteEventFn  func(ctx context.Context, p contextutil.Principal, id string) error
}

func (f *fakeService) CreateEvent(ctx context.Context, p contextutil.Principal, orgID string, req widget.CreateEventRequest) (widget.EventResponse, error) {
	return f.createEventFn(ctx, p, orgID, req)
}
func (f *fakeService) ListProjects(ctx context.Context, p contextutil.Principal, orgID string, req widget.ListProjectsRequest) ([]widget.ProjectResponse, error) {
	return f.listProjectsFn(ctx, p, orgID, req)
}
func (f *fakeService) DeleteEvent(ctx context.Context, p contextutil.Principal, id string) error {
	return f.deleteEventFn(ctx, p, id)
}

func newRouter(svc widget.Service, orgID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := contextutil.WithPrincipal(c.Request.Context(), contextutil.Principal{UserID: uuid.New()})
		ctx = contextutil.WithOrganizationID(ctx, orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	widget.RegisterRoutes(r.Group(""), widget.NewHandler(svc))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWidgetHandler_CreateEvent(t *testing.T) {
	orgID := uuid.NewString()
	svc := &fakeService{
		createEventFn: func(_ context.Context, _ contextutil.Principal, gotOrg string, req widget.CreateEventRequest) (widget.EventResponse, error) {
			assert.Equal(t, orgID, gotOrg)
			return widget.EventResponse{ID: "e1", Title: req.Title, StartTime: req.StartTime.Format("2006-01-02T15:04:05Z07:00")}, nil
		},
	}
	r := newRouter(svc, orgID)

	w := do(r, http.MethodPost, "/events/", `{"title":"All hands","start_time":"2026-03-12T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var env struct {
		Data widget.EventResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "All hands", env.Data.Title)
	assert.Equal(t, "2026-03-12T09:00:00Z", env.Data.StartTime)

	w = do(r, http.MethodPost, "/events/", `{"title":"No start"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/events/", `{"title":"Bad link","start_time":"2026-03-12T09:00:00Z","link":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWidgetHandler_ListProjects(t *testing.T) {
	svc := &fakeService{
		listProjectsFn: func(_ context.Context, _ contextutil.Principal, _ string, req widget.ListProjectsRequest) ([]widget.ProjectResponse, error) {
			assert.Equal(t, "done", req.Status)
			return []widget.ProjectResponse{{ID: "p1"}}, nil
		},
	}
	r := newRouter(svc, "")

	w := do(r, http.MethodGet, "/projects/?status=done", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/projects/?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWidgetHandler_DeleteEvent(t *testing.T) {
	svc := &fakeService{
		deleteEventFn: func(_ context.Context, _ contextutil.Principal, id string) error {
			if id == "foreign" {
				return authzerrors.ErrNotVisible
			}
			return nil
		},
	}
	r := newRouter(svc, "")

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/events/e1/", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/events/foreign/", "").Code)
}
