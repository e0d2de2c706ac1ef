package widget

import (
	"context"
	"time"

	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateEvent(ctx context.Context, e *Event) error
	UpcomingEvents(ctx context.Context, v tenant.Visibility, from time.Time) ([]Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	UpdateEvent(ctx context.Context, e *Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	CreateProject(ctx context.Context, p *Project) error
	ListProjects(ctx context.Context, v tenant.Visibility, status ProjectStatus) ([]Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// UpcomingEvents returns the events starting at or after from, soonest first.
func (r *repository) UpcomingEvents(ctx context.Context, v tenant.Visibility, from time.Time) ([]Event, error) {
	var evts []Event
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(v)).
		Where("start_time >= ?", from).
		Order("start_time ASC").
		Find(&evts).Error
	return evts, err
}

func (r *repository) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var e Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) UpdateEvent(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Event{}, "id = ?", id).Error
}

func (r *repository) CreateProject(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) ListProjects(ctx context.Context, v tenant.Visibility, status ProjectStatus) ([]Project, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(v))
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var projects []Project
	err := q.Order("due_date ASC, name ASC").Find(&projects).Error
	return projects, err
}

func (r *repository) GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	var p Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateProject(ctx context.Context, p *Project) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Project{}, "id = ?", id).Error
}
