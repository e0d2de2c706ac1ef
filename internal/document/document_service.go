package document

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go-hrms/internal/authz"
	authzerrors "go-hrms/internal/authz/errors"
	documenterrors "go-hrms/internal/document/errors"
	"go-hrms/internal/events"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Service interface {
	Create(ctx context.Context, p contextutil.Principal, req CreateDocumentRequest) (DocumentResponse, error)
	List(ctx context.Context, p contextutil.Principal, organizationID string, req ListDocumentsRequest) ([]DocumentResponse, error)
	GetByID(ctx context.Context, p contextutil.Principal, id string) (DocumentResponse, error)
	Update(ctx context.Context, p contextutil.Principal, id string, req UpdateDocumentRequest) (DocumentResponse, error)
	Delete(ctx context.Context, p contextutil.Principal, id string) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	outbox     events.Outbox
	authorizer authz.Authorizer
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox events.Outbox, authorizer authz.Authorizer, logger ...*zap.Logger) Service {
	l := zap.L().Named("document.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		outbox:     outbox,
		authorizer: authorizer,
		now:        time.Now,
		logger:     l,
	}
}

// Create stores the document under the employee's organization and notifies
// the employee through the outbox.
func (s *service) Create(ctx context.Context, p contextutil.Principal, req CreateDocumentRequest) (DocumentResponse, error) {
	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return DocumentResponse{}, documenterrors.ErrInvalidEmployee
	}
	metadata, err := parseMetadata(req.Metadata)
	if err != nil {
		return DocumentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.Employee(ctx, employeeID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return DocumentResponse{}, documenterrors.ErrInvalidEmployee
		}
		return DocumentResponse{}, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, empl.OrganizationID, authz.CapabilityAdmin); err != nil {
		if errors.Is(err, authzerrors.ErrNotVisible) {
			return DocumentResponse{}, documenterrors.ErrInvalidEmployee
		}
		return DocumentResponse{}, err
	}

	uploader := p.UserID
	doc := &Document{
		OrganizationID: empl.OrganizationID,
		EmployeeID:     empl.ID,
		Title:          strings.TrimSpace(req.Title),
		Category:       Category(req.Category),
		FileURL:        req.FileURL,
		FileSize:       req.FileSize,
		Description:    req.Description,
		Metadata:       metadata,
		UploadedBy:     &uploader,
	}
	if err := qtx.Create(ctx, doc); err != nil {
		return DocumentResponse{}, err
	}
	doc.Employee = empl

	if empl.UserID != nil {
		evt := events.New(events.DocumentCreated, doc.OrganizationID, "document", doc.ID, s.now()).
			From(p.UserID).
			Notify(empl.UserID, events.KindDocument,
				"New document",
				"A new document is available: "+doc.Title,
				"/documents/"+doc.ID.String())
		evt.RequestID = contextutil.GetRequestID(ctx)
		if err := s.outbox.Enqueue(ctx, tx, evt); err != nil {
			return DocumentResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return DocumentResponse{}, err
	}

	contextutil.GetLogger(ctx, s.logger).Info("document created",
		zap.String("organization_id", doc.OrganizationID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("category", string(doc.Category)),
	)
	return mapToResponse(*doc), nil
}

func (s *service) List(ctx context.Context, p contextutil.Principal, organizationID string, req ListDocumentsRequest) ([]DocumentResponse, error) {
	v, err := authz.ResolveScope(ctx, s.authorizer, p, organizationID)
	if err != nil {
		return nil, err
	}

	f := ListFilter{Category: Category(req.Category), Search: req.Search}
	if req.Employee != "" {
		id, err := uuid.Parse(req.Employee)
		if err != nil {
			return nil, documenterrors.ErrInvalidEmployee
		}
		f.EmployeeID = &id
	}

	docs, err := s.repo.List(ctx, v, f)
	if err != nil {
		return nil, err
	}
	out := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		out[i] = mapToResponse(d)
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, p contextutil.Principal, id string) (DocumentResponse, error) {
	doc, err := s.load(ctx, s.repo, p, id, authz.CapabilityMember)
	if err != nil {
		return DocumentResponse{}, err
	}
	return mapToResponse(*doc), nil
}

func (s *service) Update(ctx context.Context, p contextutil.Principal, id string, req UpdateDocumentRequest) (DocumentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DocumentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	doc, err := s.load(ctx, qtx, p, id, authz.CapabilityAdmin)
	if err != nil {
		return DocumentResponse{}, err
	}

	if req.Title != nil {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		doc.Category = Category(*req.Category)
	}
	if req.FileURL != nil {
		doc.FileURL = *req.FileURL
	}
	if req.FileSize != nil {
		doc.FileSize = *req.FileSize
	}
	if req.Description != nil {
		doc.Description = *req.Description
	}
	if req.Metadata != nil {
		if doc.Metadata, err = parseMetadata(req.Metadata); err != nil {
			return DocumentResponse{}, err
		}
	}

	if err := qtx.Update(ctx, doc); err != nil {
		return DocumentResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return DocumentResponse{}, err
	}
	return mapToResponse(*doc), nil
}

func (s *service) Delete(ctx context.Context, p contextutil.Principal, id string) error {
	doc, err := s.load(ctx, s.repo, p, id, authz.CapabilityAdmin)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	contextutil.GetLogger(ctx, s.logger).Info("document deleted",
		zap.String("document_id", doc.ID.String()),
	)
	return nil
}

func (s *service) load(ctx context.Context, repo Repository, p contextutil.Principal, id string, cap authz.Capability) (*Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil, documenterrors.ErrDocumentNotFound
	}
	doc, err := repo.GetByID(ctx, docID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, documenterrors.ErrDocumentNotFound
		}
		return nil, err
	}
	if _, err := s.authorizer.AuthorizeObject(ctx, p, doc.OrganizationID, cap); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseMetadata accepts an absent or null value and otherwise requires a
// JSON object.
func parseMetadata(raw json.RawMessage) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, documenterrors.ErrInvalidMetadata
	}
	return datatypes.JSON(trimmed), nil
}

func mapToResponse(d Document) DocumentResponse {
	resp := DocumentResponse{
		ID:             d.ID.String(),
		OrganizationID: d.OrganizationID.String(),
		EmployeeID:     d.EmployeeID.String(),
		Title:          d.Title,
		Category:       string(d.Category),
		FileURL:        d.FileURL,
		FileSize:       d.FileSize,
		Description:    d.Description,
		UploadedAt:     d.UploadedAt.UTC().Format(time.RFC3339),
	}
	if len(d.Metadata) > 0 {
		resp.Metadata = json.RawMessage(d.Metadata)
	}
	if d.Employee != nil {
		resp.EmployeeDetail = &EmployeeDetail{
			ID:       d.Employee.ID.String(),
			FullName: d.Employee.FullName(),
		}
	}
	if d.UploadedBy != nil {
		v := d.UploadedBy.String()
		resp.UploadedBy = &v
	}
	return resp
}
