package authz

import (
	"net/http"

	authzerrors "go-hrms/internal/authz/errors"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"
	"go-hrms/internal/tenant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	authorizer Authorizer
	logger     *zap.Logger
}

func NewHandler(authorizer Authorizer, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("authz.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("authz.handler")
	}
	return &Handler{authorizer: authorizer, logger: l}
}

// Capabilities reports the caller's role and capabilities in the organization
// named by the request. The role resolved by RequireCapability is reused when
// the route is gated.
func (h *Handler) Capabilities(c *gin.Context) {
	ctx := c.Request.Context()
	p, ok := contextutil.GetPrincipal(ctx)
	if !ok {
		h.writeServiceError(c, authzerrors.ErrUnauthenticated)
		return
	}

	orgID, err := ParseOrganization(contextutil.GetOrganizationID(ctx))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	role := tenant.Role(c.GetString(ContextRole))
	if role == "" {
		role, err = h.authorizer.Authorize(ctx, p, orgID, CapabilityMember)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
	}

	response.Success(c, http.StatusOK, CapabilitiesResponse{
		OrganizationID: orgID.String(),
		Role:           string(role),
		IsSuperuser:    p.IsSuperuser,
		Capabilities:   CapabilitiesOf(h.authorizer, role),
	}, nil)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	if httpErr.Status >= http.StatusInternalServerError {
		contextutil.GetLogger(c.Request.Context(), h.logger).Error("capabilities lookup failed", zap.Error(err))
	}
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}
