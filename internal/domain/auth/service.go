package auth

import (
	"context"
	"errors"
	"time"

	"hrpay/internal/domain/audit"
)

type Service struct {
	store     StoreAPI
	audit     audit.Recorder
	jwtSecret string
	jwtTTL    time.Duration
}

func NewService(store StoreAPI, recorder audit.Recorder, jwtSecret string, jwtTTL time.Duration) *Service {
	return &Service{store: store, audit: recorder, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

type CreateUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (s *Service) Login(ctx context.Context, meta audit.RequestMeta, login, password string) (User, string, error) {
	user, hash, err := s.store.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}
	if !user.IsActive {
		return User{}, "", ErrInvalidCredentials
	}
	if err := CheckPassword(hash, password); err != nil {
		return User{}, "", ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtSecret, Claims{UserID: user.ID, Role: user.Role}, s.jwtTTL)
	if err != nil {
		return User{}, "", err
	}

	if err := s.store.UpdateLastLogin(ctx, user.ID); err == nil {
		now := time.Now()
		user.LastLoginAt = &now
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    user.ID,
		Action:     "auth.login",
		Resource:   "user",
		ResourceID: user.ID,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return user, token, nil
}

// CreateUser builds a new actor. The stored permission set is always
// derived from the role, never taken from the caller.
func (s *Service) CreateUser(ctx context.Context, actorID string, meta audit.RequestMeta, input CreateUserInput) (User, error) {
	if !ValidRole(input.Role) {
		return User{}, ErrUnknownRole
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return User{}, err
	}

	user, err := s.store.Insert(ctx, User{
		Username:    input.Username,
		Email:       input.Email,
		Role:        input.Role,
		Permissions: PermissionsForRole(input.Role),
		IsActive:    true,
		CreatedBy:   actorID,
	}, hash)
	if err != nil {
		return User{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "user.create",
		Resource:   "user",
		ResourceID: user.ID,
		Details:    map[string]any{"username": user.Username, "role": user.Role},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]User, int, error) {
	return s.store.List(ctx, limit, offset)
}

// UpdateUser applies profile changes. A role change recomputes the
// permission set in full, discarding any custom grants.
func (s *Service) UpdateUser(ctx context.Context, actorID string, meta audit.RequestMeta, id string, input UpdateUserInput) (User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil && *input.Role != user.Role {
		if !ValidRole(*input.Role) {
			return User{}, ErrUnknownRole
		}
		user.Role = *input.Role
		user.Permissions = PermissionsForRole(user.Role)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	updated, err := s.store.Update(ctx, user)
	if err != nil {
		return User{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "user.update",
		Resource:   "user",
		ResourceID: updated.ID,
		Details:    map[string]any{"role": updated.Role, "isActive": updated.IsActive},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return updated, nil
}

// SetCustomPermissions grants an explicit permission set. The grant
// only lasts until the next role change, which rederives the set.
func (s *Service) SetCustomPermissions(ctx context.Context, actorID string, meta audit.RequestMeta, id string, perms []string) (User, error) {
	for _, perm := range perms {
		if !ValidPermission(perm) {
			return User{}, ErrUnknownPermission
		}
	}
	if err := s.store.SetPermissions(ctx, id, perms); err != nil {
		return User{}, err
	}
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "user.permissions.update",
		Resource:   "user",
		ResourceID: id,
		Details:    map[string]any{"permissions": perms},
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return user, nil
}

func (s *Service) ResetPassword(ctx context.Context, actorID string, meta audit.RequestMeta, id, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "user.password.reset",
		Resource:   "user",
		ResourceID: id,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, actorID string, meta audit.RequestMeta, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     "user.delete",
		Resource:   "user",
		ResourceID: id,
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
	})
	return nil
}
