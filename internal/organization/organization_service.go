package organization

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"go-hrms/internal/authz"
	"go-hrms/internal/bootstrap"
	organizationerrors "go-hrms/internal/organization/errors"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
)

// ActivityLabels are the day initials shown under the activity chart,
// indexed by time.Weekday.
var ActivityLabels = [7]string{"D", "L", "M", "M", "J", "V", "S"}

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateOrganizationRequest) (OrganizationResponse, error)
	List(ctx context.Context, p contextutil.Principal, req ListOrganizationsRequest) ([]OrganizationResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (OrganizationResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateOrganizationRequest) (OrganizationResponse, error)
	Deactivate(ctx context.Context, p contextutil.Principal, id string) error
	Stats(ctx context.Context, p contextutil.Principal, id string) (StatsResponse, error)
	ActivityChart(ctx context.Context, p contextutil.Principal, id string) (ActivityChartResponse, error)
}

type service struct {
	db         *sql.DB
	repo       Repository
	authorizer authz.Authorizer
	audit      bootstrap.AuditLogger
	sf         *singleflight.Group
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, authorizer authz.Authorizer, audit bootstrap.AuditLogger, logger ...*zap.Logger) Service {
	l := zap.L().Named("organization.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("organization.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		authorizer: authorizer,
		audit:      audit,
		sf:         &singleflight.Group{},
		now:        time.Now,
		logger:     l,
	}
}

// WithClock overrides the clock used by ActivityChart.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateOrganizationRequest) (OrganizationResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create organization requested", zap.String("name", req.Name))

	slug := Slugify(req.Slug)
	if req.Slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return OrganizationResponse{}, organizationerrors.ErrInvalidSlug
	}
	plan := req.Plan
	if plan == "" {
		plan = PlanFree
	}
	if !plan.Valid() {
		return OrganizationResponse{}, organizationerrors.ErrInvalidPlan
	}

	org := &Organization{
		Name:         strings.TrimSpace(req.Name),
		Slug:         slug,
		Description:  req.Description,
		PrimaryColor: valueOr(req.PrimaryColor, "#4F46E5"),
		Plan:         plan,
		MaxEmployees: 10,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Website:      req.Website,
		Timezone:     valueOr(req.Timezone, "UTC"),
		DateFormat:   valueOr(req.DateFormat, "DD/MM/YYYY"),
		Currency:     strings.ToUpper(valueOr(req.Currency, "EUR")),
		Settings:     datatypes.JSON(req.Settings),
		IsActive:     true,
	}
	if req.MaxEmployees != nil {
		org.MaxEmployees = *req.MaxEmployees
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create organization begin tx failed", zap.Error(err))
		return OrganizationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, org); err != nil {
		return OrganizationResponse{}, mapRepositoryError(err)
	}
	if err := qtx.AddMember(ctx, &tenant.Membership{
		OrganizationID: org.ID,
		UserID:         p.UserID,
		Role:           tenant.RoleOwner,
		IsActive:       true,
	}); err != nil {
		log.Error("create organization owner membership failed", zap.Error(err))
		return OrganizationResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create organization commit failed", zap.Error(err))
		return OrganizationResponse{}, err
	}

	if s.audit != nil {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "organization.provisioned",
			Message: "organization provisioned",
			Meta: map[string]any{
				"organization_id": org.ID.String(),
				"slug":            org.Slug,
				"owner_id":        p.UserID.String(),
				"request_id":      contextutil.GetRequestID(ctx),
			},
		})
	}
	log.Info("create organization success", zap.String("organization_id", org.ID.String()))
	return mapToResponse(org), nil
}

func (s *service) List(ctx context.Context, p contextutil.Principal, req ListOrganizationsRequest) ([]OrganizationResponse, error) {
	v, err := s.authorizer.Visibility(ctx, p)
	if err != nil {
		return nil, err
	}

	orgs, err := s.repo.List(ctx, v, req.Search)
	if err != nil {
		return nil, err
	}

	out := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		out = append(out, mapToResponse(&orgs[i]))
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (OrganizationResponse, error) {
	org, err := s.load(ctx, p, id, authz.CapabilityMember)
	if err != nil {
		return OrganizationResponse{}, err
	}
	return mapToResponse(org), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateOrganizationRequest) (OrganizationResponse, error) {
	org, err := s.load(ctx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return OrganizationResponse{}, err
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return OrganizationResponse{}, organizationerrors.ErrInvalidSlug
		}
		org.Slug = slug
	}
	if req.Plan != nil {
		if !req.Plan.Valid() {
			return OrganizationResponse{}, organizationerrors.ErrInvalidPlan
		}
		org.Plan = *req.Plan
	}
	if req.MaxEmployees != nil {
		org.MaxEmployees = *req.MaxEmployees
	}
	if req.Currency != nil {
		org.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Settings != nil {
		org.Settings = datatypes.JSON(req.Settings)
	}
	assign(&org.Description, req.Description)
	assign(&org.PrimaryColor, req.PrimaryColor)
	assign(&org.Email, req.Email)
	assign(&org.Phone, req.Phone)
	assign(&org.Address, req.Address)
	assign(&org.Website, req.Website)
	assign(&org.Timezone, req.Timezone)
	assign(&org.DateFormat, req.DateFormat)

	if err := s.repo.Update(ctx, org); err != nil {
		return OrganizationResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(org), nil
}

func (s *service) Deactivate(ctx context.Context, p contextutil.Principal, id string) error {
	org, err := s.load(ctx, p, id, authz.CapabilityOwner)
	if err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, org.ID); err != nil {
		return err
	}

	if s.audit != nil {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "organization.deactivated",
			Message: "organization deactivated",
			Meta: map[string]any{
				"organization_id": org.ID.String(),
				"actor_id":        p.UserID.String(),
			},
		})
	}
	return nil
}

func (s *service) Stats(ctx context.Context, p contextutil.Principal, id string) (StatsResponse, error) {
	org, err := s.load(ctx, p, id, authz.CapabilityMember)
	if err != nil {
		return StatsResponse{}, err
	}

	// concurrent callers for the same organization share one query
	v, err, _ := s.sf.Do("stats:"+org.ID.String(), func() (any, error) {
		return s.repo.Stats(ctx, org.ID)
	})
	if err != nil {
		return StatsResponse{}, err
	}
	st := v.(Stats)
	return StatsResponse{
		TotalEmployees:   st.TotalEmployees,
		TotalDepartments: st.TotalDepartments,
		PendingLeaves:    st.PendingLeaves,
		ActiveMembers:    st.ActiveMembers,
	}, nil
}

func (s *service) ActivityChart(ctx context.Context, p contextutil.Principal, id string) (ActivityChartResponse, error) {
	org, err := s.load(ctx, p, id, authz.CapabilityMember)
	if err != nil {
		return ActivityChartResponse{}, err
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	resp := ActivityChartResponse{
		Labels: make([]string, 0, 7),
		Data:   make([]int64, 0, 7),
	}
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		n, err := s.repo.CountPresent(ctx, org.ID, day)
		if err != nil {
			return ActivityChartResponse{}, err
		}
		resp.Labels = append(resp.Labels, ActivityLabels[day.Weekday()])
		resp.Data = append(resp.Data, n)
	}
	return resp, nil
}

// load authorizes cap on the organization itself. Unknown and foreign ids
// both surface as not found.
func (s *service) load(ctx context.Context, p contextutil.Principal, id string, cap authz.Capability) (*Organization, error) {
	orgID, err := uuid.Parse(id)
	if err != nil {
		return nil, organizationerrors.ErrOrganizationNotFound
	}

	if _, err := s.authorizer.AuthorizeObject(ctx, p, orgID, cap); err != nil {
		return nil, err
	}

	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, organizationerrors.ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

func mapRepositoryError(err error) error {
	detail, ok := dberr.UniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(detail, "slug") {
		return organizationerrors.ErrSlugTaken
	}
	return organizationerrors.ErrNameTaken
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func assign(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func mapToResponse(o *Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           o.ID.String(),
		Name:         o.Name,
		Slug:         o.Slug,
		Description:  o.Description,
		PrimaryColor: o.PrimaryColor,
		Plan:         string(o.Plan),
		MaxEmployees: o.MaxEmployees,
		Email:        o.Email,
		Phone:        o.Phone,
		Address:      o.Address,
		Website:      o.Website,
		Timezone:     o.Timezone,
		DateFormat:   o.DateFormat,
		Currency:     o.Currency,
		Settings:     []byte(o.Settings),
		IsActive:     o.IsActive,
		CreatedAt:    o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
