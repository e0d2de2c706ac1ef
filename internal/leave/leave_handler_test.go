package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/leave"
	leaveerrors "go-hrms/internal/leave/errors"
	"go-hrms/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fakeLeaveService struct {
	leave.Service
	CreateFn  func(ctx context.Context, p contextutil.Principal, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	ListFn    func(ctx context.Context, p contextutil.Principal, orgID string, req leave.ListLeavesRequest) ([]leave.LeaveResponse, error)
	ApproveFn func(ctx context.Context, p contextutil.Principal, id string) (leave.LeaveResponse, error)
	RejectFn  func(ctx context.Context, p contextutil.Principal, id string, reason string) (leave.LeaveResponse, error)
	CancelFn  func(ctx context.Context, p contextutil.Principal, id string) (leave.LeaveResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, p contextutil.Principal, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.CreateFn(ctx, p, req)
}
func (f *fakeLeaveService) List(ctx context.Context, p contextutil.Principal, orgID string, req leave.ListLeavesRequest) ([]leave.LeaveResponse, error) {
	return f.ListFn(ctx, p, orgID, req)
}
func (f *fakeLeaveService) Approve(ctx context.Context, p contextutil.Principal, id string) (leave.LeaveResponse, error) {
	return f.ApproveFn(ctx, p, id)
}
func (f *fakeLeaveService) Reject(ctx context.Context, p contextutil.Principal, id string, reason string) (leave.LeaveResponse, error) {
	return f.RejectFn(ctx, p, id, reason)
}
func (f *fakeLeaveService) Cancel(ctx context.Context, p contextutil.Principal, id string) (leave.LeaveResponse, error) {
	return f.CancelFn(ctx, p, id)
}

func setupRouter(svc leave.Service, p *contextutil.Principal, orgID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		ctx := c.Request.Context()
		if p != nil {
			ctx = contextutil.WithPrincipal(ctx, *p)
		}
		if orgID != "" {
			ctx = contextutil.WithOrganizationID(ctx, orgID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	leave.RegisterRoutes(r.Group(""), leave.NewHandler(svc))
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestLeaveHandler_Create(t *testing.T) {
	p := contextutil.Principal{UserID: uuid.New()}
	ltID := uuid.NewString()
	svc := &fakeLeaveService{
		CreateFn: func(_ context.Context, got contextutil.Principal, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
			assert.Equal(t, p.UserID, got.UserID)
			if req.StartDate == "2026-03-12" {
				return leave.LeaveResponse{}, leaveerrors.ErrLeaveOverlap
			}
			return leave.LeaveResponse{ID: "l1", LeaveTypeID: req.LeaveTypeID, Status: "pending", TotalDays: 3}, nil
		},
	}
	r := setupRouter(svc, &p, "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "created",
			body:       `{"leave_type":"` + ltID + `","start_date":"2026-03-10","end_date":"2026-03-12","reason":"trip"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing leave type",
			body:       `{"start_date":"2026-03-10","end_date":"2026-03-12"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "bad date layout",
			body:       `{"leave_type":"` + ltID + `","start_date":"10-03-2026","end_date":"2026-03-12"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "overlap",
			body:       `{"leave_type":"` + ltID + `","start_date":"2026-03-12","end_date":"2026-03-13"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONFLICT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, "/leaves/", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var got leave.LeaveResponse
			require.NoError(t, json.Unmarshal(env.Data, &got))
			assert.Equal(t, ltID, got.LeaveTypeID)
			assert.Equal(t, 3, got.TotalDays)
		})
	}
}

func TestLeaveHandler_List(t *testing.T) {
	p := contextutil.Principal{UserID: uuid.New()}
	orgID := uuid.NewString()
	svc := &fakeLeaveService{
		ListFn: func(_ context.Context, _ contextutil.Principal, gotOrg string, req leave.ListLeavesRequest) ([]leave.LeaveResponse, error) {
			assert.Equal(t, orgID, gotOrg)
			assert.Equal(t, leave.RoleToApprove, req.Role)
			return []leave.LeaveResponse{{ID: "l1"}, {ID: "l2"}}, nil
		},
	}
	r := setupRouter(svc, &p, orgID)

	w := serve(r, http.MethodGet, "/leaves/?role=to_approve", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []leave.LeaveResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	assert.Len(t, items, 2)

	w = serve(r, http.MethodGet, "/leaves/?role=everyone", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveHandler_Decisions(t *testing.T) {
	p := contextutil.Principal{UserID: uuid.New()}
	var gotReason string
	svc := &fakeLeaveService{
		ApproveFn: func(_ context.Context, _ contextutil.Principal, id string) (leave.LeaveResponse, error) {
			switch id {
			case "done":
				return leave.LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
			case "hidden":
				return leave.LeaveResponse{}, authzerrors.ErrNotVisible
			case "report":
				return leave.LeaveResponse{}, leaveerrors.ErrNotSubordinate
			}
			return leave.LeaveResponse{ID: id, Status: "approved"}, nil
		},
		RejectFn: func(_ context.Context, _ contextutil.Principal, id string, reason string) (leave.LeaveResponse, error) {
			gotReason = reason
			return leave.LeaveResponse{ID: id, Status: "rejected", RejectionReason: reason}, nil
		},
		CancelFn: func(_ context.Context, _ contextutil.Principal, id string) (leave.LeaveResponse, error) {
			return leave.LeaveResponse{}, leaveerrors.ErrCannotCancel
		},
	}
	r := setupRouter(svc, &p, "")

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCode   string
	}{
		{name: "approve", path: "/leaves/l1/approve/", wantStatus: http.StatusOK},
		{name: "already processed", path: "/leaves/done/approve/", wantStatus: http.StatusBadRequest, wantCode: "INVALID_STATE"},
		{name: "other tenant", path: "/leaves/hidden/approve/", wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "not a direct report", path: "/leaves/report/approve/", wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "cancel started leave", path: "/leaves/l1/cancel/", wantStatus: http.StatusBadRequest, wantCode: "INVALID_STATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodPost, tt.path, "")
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				env := decode(t, w)
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
			}
		})
	}

	t.Run("reject without body", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/leaves/l1/reject/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, gotReason)
	})

	t.Run("reject with reason", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/leaves/l1/reject/", `{"reason":"peak season"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "peak season", gotReason)
	})
}

func TestLeaveHandler_Unauthenticated(t *testing.T) {
	r := setupRouter(&fakeLeaveService{}, nil, "")
	w := serve(r, http.MethodGet, "/leaves/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
