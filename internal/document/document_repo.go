package document

import (
	"context"
	"database/sql"
	"strings"

	"go-hrms/internal/shared/connection"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListFilter struct {
	EmployeeID *uuid.UUID
	Category   Category
	Search     string
}

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, doc *Document) error
	List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	Update(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	Employee(ctx context.Context, id uuid.UUID) (*EmployeeRef, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.BindTx(r.db, tx)}
}

func (r *repository) Create(ctx context.Context, doc *Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(doc).Error
}

func (r *repository) List(ctx context.Context, v tenant.Visibility, f ListFilter) ([]Document, error) {
	q := r.db.WithContext(ctx).Scopes(tenant.Scope(v))
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var docs []Document
	err := q.Preload("Employee").Order("uploaded_at DESC").Find(&docs).Error
	return docs, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	var doc Document
	err := r.db.WithContext(ctx).Preload("Employee").Where("id = ?", id).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) Update(ctx context.Context, doc *Document) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(doc).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Document{}, "id = ?", id).Error
}

func (r *repository) Employee(ctx context.Context, id uuid.UUID) (*EmployeeRef, error) {
	var e EmployeeRef
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}
