package models

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// User is the credential record. Password material and the lockout counter are
// never serialized to clients; soft deletion happens via the Active flag, rows
// are not removed by the application.
type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Photo string `gorm:"default:default.jpg" json:"photo"`
	Role  Role   `gorm:"type:varchar(16);not null;default:user" json:"role"`

	PasswordHash         string     `gorm:"not null" json:"-"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetToken   string     `gorm:"index" json:"-"` // sha256 hex of the raw reset token
	PasswordResetExpires *time.Time `json:"-"`
	FailedLoginAttempts  int        `gorm:"not null;default:0" json:"-"`
	Active               bool       `gorm:"not null;default:true" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// ChangedPasswordAfter reports whether the password changed after the given
// token issuance time. Tokens issued before a password change are permanently
// invalid even when not yet expired.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	// compare at second granularity, JWT iat has no sub-second precision
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}
