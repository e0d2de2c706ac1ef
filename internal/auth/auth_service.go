package auth

import (
	"context"
	"strings"
	"time"

	autherrors "go-hrms/internal/auth/errors"
	"go-hrms/internal/auth/token"
	"go-hrms/internal/shared/contextutil"
	"go-hrms/internal/shared/dberr"
	"go-hrms/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, req TokenRequest) (TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	GetMe(ctx context.Context, userID string) (MeResponse, error)
}

type service struct {
	repo      Repository
	tokens    *token.Manager
	directory tenant.Directory
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(repo Repository, tokens *token.Manager, directory tenant.Directory, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		repo:      repo,
		tokens:    tokens,
		directory: directory,
		now:       time.Now,
		logger:    l,
	}
}

func (s *service) Login(ctx context.Context, req TokenRequest) (TokenResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if !dberr.IsNotFound(err) {
			log.Error("login lookup failed", zap.Error(err))
			return TokenResponse{}, err
		}
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Info("login rejected", zap.String("user_id", user.ID.String()))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.IsSuperuser)
	if err != nil {
		log.Error("issue token failed", zap.Error(err))
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		log.Warn("update last_login failed", zap.Error(err))
	}

	return TokenResponse{Access: pair.Access, Refresh: pair.Refresh, User: mapUser(user)}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return TokenResponse{}, err
	}

	// deactivated accounts and revoked superuser status take effect on refresh
	user, err := s.repo.GetByID(ctx, uuid.MustParse(claims.UserID))
	if err != nil {
		if dberr.IsNotFound(err) {
			return TokenResponse{}, autherrors.ErrInvalidToken
		}
		return TokenResponse{}, err
	}
	if !user.IsActive {
		return TokenResponse{}, autherrors.ErrUserInactive
	}

	pair, err := s.tokens.Issue(user.ID, user.IsSuperuser)
	if err != nil {
		return TokenResponse{}, autherrors.ErrTokenGenerationFailed
	}
	return TokenResponse{Access: pair.Access, Refresh: pair.Refresh, User: mapUser(user)}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("register user requested", zap.String("username", req.Username))

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return UserResponse{}, err
	}
	if exists {
		return UserResponse{}, autherrors.ErrUsernameTaken
	}
	exists, err = s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return UserResponse{}, err
	}
	if exists {
		return UserResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserResponse{}, err
	}

	user := &User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashed),
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return UserResponse{}, mapRepositoryError(err)
	}

	log.Info("register user success", zap.String("user_id", user.ID.String()))
	return mapUser(user), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (MeResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return MeResponse{}, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if dberr.IsNotFound(err) {
			return MeResponse{}, autherrors.ErrUserNotFound
		}
		return MeResponse{}, err
	}

	memberships, err := s.directory.ActiveMemberships(ctx, id)
	if err != nil {
		return MeResponse{}, err
	}

	resp := MeResponse{
		UserResponse: mapUser(user),
		Memberships:  make([]MembershipResponse, 0, len(memberships)),
	}
	for _, m := range memberships {
		resp.Memberships = append(resp.Memberships, MembershipResponse{
			OrganizationID: m.OrganizationID.String(),
			Role:           string(m.Role),
			JoinedAt:       m.JoinedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

func mapRepositoryError(err error) error {
	detail, ok := dberr.UniqueViolation(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(detail, "email"):
		return autherrors.ErrEmailAlreadyRegistered
	case strings.Contains(detail, "username"):
		return autherrors.ErrUsernameTaken
	}
	return autherrors.ErrUsernameTaken
}

func mapUser(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		IsSuperuser: u.IsSuperuser,
	}
}
