package employee_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/employee"
	employeeerrors "go-hrms/internal/employee/errors"
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

type fakeEmployeeService struct {
	employee.Service
	CreateFn       func(ctx context.Context, p contextutil.Principal, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error)
	ListFn         func(ctx context.Context, p contextutil.Principal, orgID string, req employee.ListEmployeesRequest) ([]employee.EmployeeResponse, error)
	OptionsFn      func(ctx context.Context, p contextutil.Principal, orgID string) ([]employee.EmployeeOption, error)
	GetByIDFn      func(ctx context.Context, p contextutil.Principal, id string) (employee.EmployeeResponse, error)
	DeleteFn       func(ctx context.Context, p contextutil.Principal, id string) error
	LeaveBalanceFn func(ctx context.Context, p contextutil.Principal, id string) (employee.LeaveBalanceResponse, error)
}

func (f *fakeEmployeeService) Create(ctx context.Context, p contextutil.Principal, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	return f.CreateFn(ctx, p, req)
}
func (f *fakeEmployeeService) List(ctx context.Context, p contextutil.Principal, orgID string, req employee.ListEmployeesRequest) ([]employee.EmployeeResponse, error) {
	return f.ListFn(ctx, p, orgID, req)
}
func (f *fakeEmployeeService) Options(ctx context.Context, p contextutil.Principal, orgID string) ([]employee.EmployeeOption, error) {
	return f.OptionsFn(ctx, p, orgID)
}
func (f *fakeEmployeeService) GetByID(ctx context.Context, p contextutil.Principal, id string) (employee.EmployeeResponse, error) {
	return f.GetByIDFn(ctx, p, id)
}
func (f *fakeEmployeeService) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	return f.DeleteFn(ctx, p, id)
}
func (f *fakeEmployeeService) LeaveBalance(ctx context.Context, p contextutil.Principal, id string) (employee.LeaveBalanceResponse, error) {
	return f.LeaveBalanceFn(ctx, p, id)
}

func setupRouter(svc employee.Service, p *contextutil.Principal, orgID string) *gin.Engine {
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
	employee.RegisterRoutes(r.Group(""), employee.NewHandler(svc))
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestEmployeeHandler_Create(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	orgID := uuid.NewString()
	valid := `{"organization":"` + orgID + `","first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","position":"Engineer","hire_date":"2026-02-01","salary":"54000.00"}`

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: valid, wantStatus: http.StatusCreated},
		{
			name:       "missing hire date",
			body:       `{"organization":"` + orgID + `","first_name":"Ada","last_name":"L","email":"ada@example.com","position":"Engineer"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "bad email",
			body:       `{"organization":"` + orgID + `","first_name":"Ada","last_name":"L","email":"nope","position":"Engineer","hire_date":"2026-02-01"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{name: "capacity reached", body: valid, err: employeeerrors.ErrCapacityReached, wantStatus: http.StatusBadRequest, wantCode: "INVALID_STATE"},
		{name: "forbidden", body: valid, err: authzerrors.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: "FORBIDDEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeEmployeeService{
				CreateFn: func(_ context.Context, _ contextutil.Principal, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
					if tt.err != nil {
						return employee.EmployeeResponse{}, tt.err
					}
					require.NotNil(t, req.Salary)
					assert.Equal(t, "54000", req.Salary.String())
					return employee.EmployeeResponse{ID: uuid.NewString(), EmployeeID: "EMP-000001", FullName: "Ada Lovelace"}, nil
				},
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/employees/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			setupRouter(svc, p, "").ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			env := decode(t, w)
			if tt.wantCode != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.wantCode, env.Error.Code)
				return
			}
			var resp employee.EmployeeResponse
			require.NoError(t, json.Unmarshal(env.Data, &resp))
			assert.Equal(t, "EMP-000001", resp.EmployeeID)
		})
	}
}

func TestEmployeeHandler_ListAndOptions(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	orgID := uuid.NewString()
	svc := &fakeEmployeeService{
		ListFn: func(_ context.Context, _ contextutil.Principal, gotOrg string, req employee.ListEmployeesRequest) ([]employee.EmployeeResponse, error) {
			assert.Equal(t, orgID, gotOrg)
			assert.Equal(t, "on_leave", req.Status)
			require.NotNil(t, req.IsActive)
			assert.True(t, *req.IsActive)
			return []employee.EmployeeResponse{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}, nil
		},
		OptionsFn: func(_ context.Context, _ contextutil.Principal, gotOrg string) ([]employee.EmployeeOption, error) {
			assert.Equal(t, orgID, gotOrg)
			return []employee.EmployeeOption{{ID: "e1", FullName: "Ada Lovelace"}}, nil
		},
	}
	r := setupRouter(svc, p, orgID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/?status=on_leave&is_active=true&page_size=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var items []employee.EmployeeResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	assert.Len(t, items, 2)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/options/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var opts []employee.EmployeeOption
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &opts))
	require.Len(t, opts, 1)
	assert.Equal(t, "Ada Lovelace", opts[0].FullName)
}

func TestEmployeeHandler_GetDeleteBalance(t *testing.T) {
	p := &contextutil.Principal{UserID: uuid.New()}
	svc := &fakeEmployeeService{
		GetByIDFn: func(_ context.Context, _ contextutil.Principal, id string) (employee.EmployeeResponse, error) {
			if id == "foreign" {
				return employee.EmployeeResponse{}, authzerrors.ErrNotVisible
			}
			return employee.EmployeeResponse{ID: id}, nil
		},
		DeleteFn: func(context.Context, contextutil.Principal, string) error { return nil },
		LeaveBalanceFn: func(context.Context, contextutil.Principal, string) (employee.LeaveBalanceResponse, error) {
			return employee.LeaveBalanceResponse{AnnualLeaveTotal: 25, AnnualLeaveUsed: 5, AnnualLeaveRemaining: 20}, nil
		},
	}
	r := setupRouter(svc, p, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/foreign/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/employees/e1/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/e1/leave_balance/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var bal employee.LeaveBalanceResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &bal))
	assert.Equal(t, int64(20), bal.AnnualLeaveRemaining)
}

func TestEmployeeHandler_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	setupRouter(&fakeEmployeeService{}, nil, "").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/employees/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
