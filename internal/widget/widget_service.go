package widget

import (
	"context"
	"strings"
	"time"

	"go-hrms/internal/authz"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	widgeterrors "go-hrms/internal/widget/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Service manages the dashboard events and projects. Any member may read
// them; managers and admins maintain them.
type Service interface {
	CreateEvent(ctx context.Context, p contextutil.Principal, organizationID string, req CreateEventRequest) (EventResponse, error)
	ListEvents(ctx context.Context, p contextutil.Principal, organizationID string) ([]EventResponse, error)
	GetEvent(ctx context.Context, p contextutil.Principal, id string) (EventResponse, error)
	UpdateEvent(ctx context.Context, p contextutil.Principal, id string, req UpdateEventRequest) (EventResponse, error)
	DeleteEvent(ctx context.Context, p contextutil.Principal, id string) error

	CreateProject(ctx context.Context, p contextutil.Principal, organizationID string, req CreateProjectRequest) (ProjectResponse, error)
	ListProjects(ctx context.Context, p contextutil.Principal, organizationID string, req ListProjectsRequest) ([]ProjectResponse, error)
	GetProject(ctx context.Context, p contextutil.Principal, id string) (ProjectResponse, error)
	UpdateProject(ctx context.Context, p contextutil.Principal, id string, req UpdateProjectRequest) (ProjectResponse, error)
	DeleteProject(ctx context.Context, p contextutil.Principal, id string) error
}

type service struct {
	repo       Repository
	authorizer authz.Authorizer
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(repo Repository, authorizer authz.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("widget.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("widget.service")
	}
	return &service{repo: repo, authorizer: authorizer, now: time.Now, logger: l}
}

// WithClock overrides the clock that decides which events are upcoming.
func WithClock(s Service, now func() time.Time) Service {
	if svc, ok := s.(*service); ok {
		svc.now = now
	}
	return s
}

func (s *service) organization(ctx context.Context, p contextutil.Principal, header, body string) (uuid.UUID, error) {
	if header == "" {
		header = body
	}
	orgID, err := authz.ParseOrganization(header)
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.authorizer.Authorize(ctx, p, orgID, authz.CapabilityManagerOrAdmin); err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}

func (s *service) CreateEvent(ctx context.Context, p contextutil.Principal, organizationID string, req CreateEventRequest) (EventResponse, error) {
	orgID, err := s.organization(ctx, p, organizationID, req.OrganizationID)
	if err != nil {
		return EventResponse{}, err
	}

	evt := &Event{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		StartTime:      req.StartTime.UTC(),
		Link:           req.Link,
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		evt.EndTime = &end
	}
	if evt.EndTime != nil && evt.EndTime.Before(evt.StartTime) {
		return EventResponse{}, widgeterrors.ErrInvalidTimeRange
	}

	if err := s.repo.CreateEvent(ctx, evt); err != nil {
		return EventResponse{}, err
	}
	contextutil.GetLogger(ctx, s.logger).Info("event created",
		zap.String("organization_id", orgID.String()),
		zap.String("event_id", evt.ID.String()),
	)
	return mapEvent(*evt), nil
}

// ListEvents returns the events starting today or later.
func (s *service) ListEvents(ctx context.Context, p contextutil.Principal, organizationID string) ([]EventResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	evts, err := s.repo.UpcomingEvents(ctx, v, today)
	if err != nil {
		return nil, err
	}
	out := make([]EventResponse, len(evts))
	for i, e := range evts {
		out[i] = mapEvent(e)
	}
	return out, nil
}

func (s *service) GetEvent(ctx context.Context, p contextutil.Principal, id string) (EventResponse, error) {
	evt, err := s.loadEvent(ctx, p, id, authz.CapabilityMember)
	if err != nil {
		return EventResponse{}, err
	}
	return mapEvent(*evt), nil
}

func (s *service) UpdateEvent(ctx context.Context, p contextutil.Principal, id string, req UpdateEventRequest) (EventResponse, error) {
	evt, err := s.loadEvent(ctx, p, id, authz.CapabilityManagerOrAdmin)
	if err != nil {
		return EventResponse{}, err
	}

	if req.Title != nil {
		evt.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		evt.Description = *req.Description
	}
	if req.StartTime != nil {
		evt.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		end := req.EndTime.UTC()
		evt.EndTime = &end
	}
	if req.Link != nil {
		evt.Link = *req.Link
	}
	if evt.EndTime != nil && evt.EndTime.Before(evt.StartTime) {
		return EventResponse{}, widgeterrors.ErrInvalidTimeRange
	}

	if err := s.repo.UpdateEvent(ctx, evt); err != nil {
		return EventResponse{}, err
	}
	return mapEvent(*evt), nil
}

func (s *service) DeleteEvent(ctx context.Context, p contextutil.Principal, id string) error {
	evt, err := s.loadEvent(ctx, p, id, authz.CapabilityManagerOrAdmin)
	if err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, evt.ID)
}

func (s *service) CreateProject(ctx context.Context, p contextutil.Principal, organizationID string, req CreateProjectRequest) (ProjectResponse, error) {
	orgID, err := s.organization(ctx, p, organizationID, req.OrganizationID)
	if err != nil {
		return ProjectResponse{}, err
	}
	due, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return ProjectResponse{}, widgeterrors.ErrInvalidDate
	}

	project := &Project{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		DueDate:        due,
		Status:         ProjectTodo,
		IconEmoji:      DefaultProjectIcon,
		Color:          DefaultProjectColor,
	}
	if req.Status != "" {
		project.Status = ProjectStatus(req.Status)
	}
	if req.IconEmoji != "" {
		project.IconEmoji = req.IconEmoji
	}
	if req.Color != "" {
		project.Color = req.Color
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		return ProjectResponse{}, err
	}
	contextutil.GetLogger(ctx, s.logger).Info("project created",
		zap.String("organization_id", orgID.String()),
		zap.String("project_id", project.ID.String()),
	)
	return mapProject(*project), nil
}

func (s *service) ListProjects(ctx context.Context, p contextutil.Principal, organizationID string, req ListProjectsRequest) ([]ProjectResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(ctx, v, ProjectStatus(req.Status))
	if err != nil {
		return nil, err
	}
	out := make([]ProjectResponse, len(projects))
	for i, pr := range projects {
		out[i] = mapProject(pr)
	}
	return out, nil
}

func (s *service) GetProject(ctx context.Context, p contextutil.Principal, id string) (ProjectResponse, error) {
	project, err := s.loadProject(ctx, p, id, authz.CapabilityMember)
	if err != nil {
		return ProjectResponse{}, err
	}
	return mapProject(*project), nil
}

func (s *service) UpdateProject(ctx context.Context, p contextutil.Principal, id string, req UpdateProjectRequest) (ProjectResponse, error) {
	project, err := s.loadProject(ctx, p, id, authz.CapabilityManagerOrAdmin)
	if err != nil {
		return ProjectResponse{}, err
	}

	if req.Name != nil {
		project.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.DueDate != nil {
		due, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return ProjectResponse{}, widgeterrors.ErrInvalidDate
		}
		project.DueDate = due
	}
	if req.Status != nil {
		project.Status = ProjectStatus(*req.Status)
	}
	if req.IconEmoji != nil {
		project.IconEmoji = *req.IconEmoji
	}
	if req.Color != nil {
		project.Color = *req.Color
	}

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		return ProjectResponse{}, err
	}
	return mapProject(*project), nil
}

func (s *service) DeleteProject(ctx context.Context, p contextutil.Principal, id string) error {
	project, err := s.loadProject(ctx, p, id, authz.CapabilityManagerOrAdmin)
	if err != nil {
		return err
	}
	return s.repo.DeleteProject(ctx, project.ID)
}

func (s *service) loadEvent(ctx context.Context, p contextutil.Principal, id string, cap authz.Capability) (*Event, error) {
	eventID, err := uuid.Parse(id)
	if err != nil {
		return nil, widgeterrors.ErrEventNotFound
	}
	evt, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, widgeterrors.ErrEventNotFound
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, evt.OrganizationID, cap); err != nil {
		return nil, err
	}
	return evt, nil
}

func (s *service) loadProject(ctx context.Context, p contextutil.Principal, id string, cap authz.Capability) (*Project, error) {
	projectID, err := uuid.Parse(id)
	if err != nil {
		return nil, widgeterrors.ErrProjectNotFound
	}
	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, widgeterrors.ErrProjectNotFound
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, project.OrganizationID, cap); err != nil {
		return nil, err
	}
	return project, nil
}

func mapEvent(e Event) EventResponse {
	resp := EventResponse{
		ID:             e.ID.String(),
		OrganizationID: e.OrganizationID.String(),
		Title:          e.Title,
		Description:    e.Description,
		StartTime:      e.StartTime.UTC().Format(time.RFC3339),
		Link:           e.Link,
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.EndTime != nil {
		v := e.EndTime.UTC().Format(time.RFC3339)
		resp.EndTime = &v
	}
	return resp
}

func mapProject(p Project) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID.String(),
		OrganizationID: p.OrganizationID.String(),
		Name:           p.Name,
		Description:    p.Description,
		DueDate:        p.DueDate.Format(dateLayout),
		Status:         string(p.Status),
		IconEmoji:      p.IconEmoji,
		Color:          p.Color,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
