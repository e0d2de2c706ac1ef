package organization_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/organization"
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

type fakeOrgService struct {
	organization.Service
	createFn func(ctx context.Context, p contextutil.Principal, req organization.CreateOrganizationRequest) (organization.OrganizationResponse, error)
	statsFn  func(ctx context.Context, p contextutil.Principal, id string) (organization.StatsResponse, error)
}

func (f *fakeOrgService) Create(ctx context.Context, p contextutil.Principal, req organization.CreateOrganizationRequest) (organization.OrganizationResponse, error) {
	return f.createFn(ctx, p, req)
}

func (f *fakeOrgService) Stats(ctx context.Context, p contextutil.Principal, id string) (organization.StatsResponse, error) {
	return f.statsFn(ctx, p, id)
}

func newOrgRouter(svc organization.Service, p *contextutil.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if p != nil {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(contextutil.WithPrincipal(c.Request.Context(), *p))
			c.Next()
		})
	}
	organization.RegisterRoutes(r.Group(""), organization.NewHandler(svc))
	return r
}

func TestOrganizationHandler_Create(t *testing.T) {
	p := contextutil.Principal{UserID: uuid.New()}
	svc := &fakeOrgService{
		createFn: func(_ context.Context, got contextutil.Principal, req organization.CreateOrganizationRequest) (organization.OrganizationResponse, error) {
			assert.Equal(t, p.UserID, got.UserID)
			return organization.OrganizationResponse{ID: "o1", Name: req.Name, Slug: "acme"}, nil
		},
	}
	r := newOrgRouter(svc, &p)

	t.Run("created", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/organizations/", strings.NewReader(`{"name":"Acme"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Contains(t, string(env.Data), `"slug":"acme"`)
	})

	t.Run("invalid email", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/organizations/", strings.NewReader(`{"name":"Acme","email":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env apiEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})
}

func TestOrganizationHandler_StatsNotVisible(t *testing.T) {
	p := contextutil.Principal{UserID: uuid.New()}
	svc := &fakeOrgService{
		statsFn: func(context.Context, contextutil.Principal, string) (organization.StatsResponse, error) {
			return organization.StatsResponse{}, authzerrors.ErrNotVisible
		},
	}

	w := httptest.NewRecorder()
	newOrgRouter(svc, &p).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/"+uuid.NewString()+"/stats/", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrganizationHandler_Unauthenticated(t *testing.T) {
	w := httptest.NewRecorder()
	newOrgRouter(&fakeOrgService{}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/organizations/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
