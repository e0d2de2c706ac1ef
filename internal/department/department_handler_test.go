package department_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-hrms/internal/department"
	departmenterrors "go-hrms/internal/department/errors"
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

type fakeDepartmentService struct {
	department.Service
	CreateFn    func(ctx context.Context, p contextutil.Principal, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	ListFn      func(ctx context.Context, p contextutil.Principal, orgID string, req department.ListDepartmentsRequest) ([]department.DepartmentResponse, error)
	DeleteFn    func(ctx context.Context, p contextutil.Principal, id string) error
	EmployeesFn func(ctx context.Context, p contextutil.Principal, id string) ([]department.DepartmentEmployeeResponse, error)
}

func (f *fakeDepartmentService) Create(ctx context.Context, p contextutil.Principal, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	return f.CreateFn(ctx, p, req)
}
func (f *fakeDepartmentService) List(ctx context.Context, p contextutil.Principal, orgID string, req department.ListDepartmentsRequest) ([]department.DepartmentResponse, error) {
	return f.ListFn(ctx, p, orgID, req)
}
func (f *fakeDepartmentService) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	return f.DeleteFn(ctx, p, id)
}
func (f *fakeDepartmentService) Employees(ctx context.Context, p contextutil.Principal, id string) ([]department.DepartmentEmployeeResponse, error) {
	return f.EmployeesFn(ctx, p, id)
}

func setupRouter(svc department.Service, p *contextutil.Principal, orgID string) *gin.Engine {
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
	department.RegisterRoutes(r.Group(""), department.NewHandler(svc))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestDepartmentHandler_Create(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	orgID := uuid.NewString()

	t.Run("success", func(t *testing.T) {
		svc := &fakeDepartmentService{
			CreateFn: func(_ context.Context, got contextutil.Principal, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
				assert.Equal(t, p.UserID, got.UserID)
				assert.Equal(t, orgID, req.OrganizationID)
				return department.DepartmentResponse{ID: uuid.NewString(), Name: req.Name, OrganizationID: orgID}, nil
			},
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/departments/", strings.NewReader(`{"organization":"`+orgID+`","name":"HR"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, p, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decode(t, w).Ok)
	})

	t.Run("missing name", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/departments/", strings.NewReader(`{"organization":"`+orgID+`"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(&fakeDepartmentService{}, p, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	t.Run("cycle", func(t *testing.T) {
		svc := &fakeDepartmentService{
			CreateFn: func(context.Context, contextutil.Principal, department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
				return department.DepartmentResponse{}, departmenterrors.ErrCycle
			},
		}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/departments/", strings.NewReader(`{"organization":"`+orgID+`","name":"HR"}`))
		req.Header.Set("Content-Type", "application/json")
		setupRouter(svc, p, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/departments/", strings.NewReader(`{}`))
		setupRouter(&fakeDepartmentService{}, nil, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestDepartmentHandler_List(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	orgID := uuid.NewString()
	svc := &fakeDepartmentService{
		ListFn: func(_ context.Context, _ contextutil.Principal, gotOrg string, req department.ListDepartmentsRequest) ([]department.DepartmentResponse, error) {
			assert.Equal(t, orgID, gotOrg)
			assert.Equal(t, "eng", req.Search)
			return []department.DepartmentResponse{{ID: "d1"}, {ID: "d2"}}, nil
		},
	}

	w := httptest.NewRecorder()
	setupRouter(svc, p, orgID).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments/?search=eng", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var items []department.DepartmentResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	assert.Len(t, items, 2)
}

func TestDepartmentHandler_DeleteAndEmployees(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	svc := &fakeDepartmentService{
		DeleteFn: func(_ context.Context, _ contextutil.Principal, id string) error {
			if id == "missing" {
				return departmenterrors.ErrDepartmentNotFound
			}
			return nil
		},
		EmployeesFn: func(_ context.Context, _ contextutil.Principal, id string) ([]department.DepartmentEmployeeResponse, error) {
			return []department.DepartmentEmployeeResponse{{ID: "e1", FullName: "Ada Lovelace"}}, nil
		},
	}
	r := setupRouter(svc, p, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/departments/d1/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/departments/missing/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/departments/d1/employees/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var items []department.DepartmentEmployeeResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Ada Lovelace", items[0].FullName)
}
