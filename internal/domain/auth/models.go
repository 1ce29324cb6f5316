package auth

import "time"

// User is an actor: an authenticated identity carrying a role and the
// permission set derived from it.
type User struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (u User) HasAnyPermission(perms ...string) bool {
	for _, want := range perms {
		for _, have := range u.Permissions {
			if have == want {
				return true
			}
		}
	}
	return false
}
