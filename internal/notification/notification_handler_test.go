package notification_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-hrms/internal/events"
	"go-hrms/internal/notification"
	notificationerrors "go-hrms/internal/notification/errors"
	"go-hrms/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type fakeService struct {
	listFn     func(ctx context.Context, userID uuid.UUID, req notification.ListNotificationsRequest) ([]notification.NotificationResponse, error)
	markReadFn func(ctx context.Context, userID uuid.UUID, id string) error
}

func (f *fakeService) List(ctx context.Context, userID uuid.UUID, req notification.ListNotificationsRequest) ([]notification.NotificationResponse, error) {
	return f.listFn(ctx, userID, req)
}
func (f *fakeService) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	return f.markReadFn(ctx, userID, id)
}
func (f *fakeService) MarkAllRead(context.Context, uuid.UUID) (notification.ReadAllResponse, error) {
	return notification.ReadAllResponse{}, nil
}
func (f *fakeService) PersistEvent(context.Context, events.DomainEvent) (bool, error) {
	return false, nil
}

func newRouter(svc notification.Service, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != nil {
		r.Use(func(c *gin.Context) {
			ctx := contextutil.WithPrincipal(c.Request.Context(), contextutil.Principal{UserID: *userID})
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
	notification.RegisterRoutes(r.Group(""), notification.NewHandler(svc))
	return r
}

func TestNotificationHandler_List(t *testing.T) {
	userID := uuid.New()
	svc := &fakeService{
		listFn: func(_ context.Context, id uuid.UUID, req notification.ListNotificationsRequest) ([]notification.NotificationResponse, error) {
			assert.Equal(t, userID, id)
			assert.True(t, req.Unread)
			return []notification.NotificationResponse{{ID: "1"}, {ID: "2"}, {ID: "3"}}, nil
		},
	}

	w := httptest.NewRecorder()
	newRouter(svc, &userID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notifications/?unread=true&page_size=2", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var items []notification.NotificationResponse
	assert.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 2)
	assert.Contains(t, string(env.Meta), `"total":3`)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	userID := uuid.New()
	svc := &fakeService{
		markReadFn: func(_ context.Context, _ uuid.UUID, id string) error {
			if id == "missing" {
				return notificationerrors.ErrNotificationNotFound
			}
			return nil
		},
	}
	r := newRouter(svc, &userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/abc/read/", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/missing/read/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationHandler_RequiresPrincipal(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&fakeService{}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/notifications/read_all/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
