package employee

import (
	"net/http"

	"go-hrms/internal/authz"
	"go-hrms/internal/shared/apperror"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("http create employee validation failed", zap.Error(err))
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Create(ctx, p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req ListEmployeesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Debug("http list employees validation failed", zap.Error(err))
		response.ValidationError(c, err)
		return
	}

	items, err := h.service.List(ctx, p, contextutil.GetOrganizationID(ctx), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, items)
	response.Success(c, http.StatusOK, page, meta)
}

func (h *Handler) Options(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.Options(ctx, p, contextutil.GetOrganizationID(ctx))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByID(ctx, p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("http update employee validation failed", zap.Error(err))
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.Update(ctx, p, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.service.Delete(ctx, p, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Subordinates(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, err := h.service.Subordinates(ctx, p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, items)
	response.Success(c, http.StatusOK, page, meta)
}

func (h *Handler) LeaveBalance(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.LeaveBalance(ctx, p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
