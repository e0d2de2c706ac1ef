package attendance

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
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, req *CheckRequest) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(req)
}

func (h *Handler) CheckIn(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req CheckRequest
	if err := bindOptional(c, &req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CheckIn(ctx, p, contextutil.GetOrganizationID(ctx), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) CheckOut(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req CheckRequest
	if err := bindOptional(c, &req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.CheckOut(ctx, p, contextutil.GetOrganizationID(ctx), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) CurrentStatus(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.CurrentStatus(ctx, p, contextutil.GetOrganizationID(ctx))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
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

func (h *Handler) MyAttendance(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	items, err := h.service.MyAttendance(ctx, p, contextutil.GetOrganizationID(ctx))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, meta := response.Paginate(c, items)
	response.Success(c, http.StatusOK, page, meta)
}

func (h *Handler) MarkAbsent(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := authz.PrincipalFrom(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var req MarkAbsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	resp, err := h.service.MarkAbsent(ctx, p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}
