package auth

import "context"

type StoreAPI interface {
	Insert(ctx context.Context, user User, passwordHash string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByLogin(ctx context.Context, login string) (User, string, error)
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	Update(ctx context.Context, user User) (User, error)
	SetPermissions(ctx context.Context, id string, perms []string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
