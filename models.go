package keygate

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. RefreshToken is the single-session slot: it holds
// the one refresh token that is currently authoritative for this user, or is
// empty when the user is logged out. Password hash and refresh token never
// serialize into responses.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	RefreshToken  string     `bun:"refresh_token,nullzero" json:"-"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// LoggedIn reports whether the user currently has an active session.
func (u *User) LoggedIn() bool {
	return u.RefreshToken != ""
}

func prepareUserDefaults(u *User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.CreatedAt == nil {
		now := time.Now()
		u.CreatedAt = &now
		u.UpdatedAt = &now
	}
}
