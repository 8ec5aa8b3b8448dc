package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// GuestSubjectPrefix marks user rows provisioned from a payment before any
// authenticated session existed for that email.
const GuestSubjectPrefix = "guest_"

type User struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	// Email is deliberately not unique: a guest row created by a webhook can
	// coexist with the real account until the merge reconciles them.
	Email           string       `gorm:"index;type:varchar(200);not null" json:"email" validate:"required,email,min=5,max=200"`
	FirstName       *string      `gorm:"type:varchar(100)" json:"first_name"`
	LastName        *string      `gorm:"type:varchar(100)" json:"last_name"`
	ExternalSubject *string      `gorm:"uniqueIndex;type:varchar(128)" json:"external_subject"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
	Enrollments     []Enrollment `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// IsGuest reports whether this row was created from a payment with a
// synthetic subject id instead of a verified identity-provider subject.
func (u *User) IsGuest() bool {
	return u.ExternalSubject == nil || strings.HasPrefix(*u.ExternalSubject, GuestSubjectPrefix)
}

// NormalizeEmail lowercases and trims an email the way every lookup and
// insert in this system expects it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitFullName derives first/last name parts from a display name claim.
func SplitFullName(name string) (first, last *string) {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return nil, nil
	}
	f := parts[0]
	first = &f
	if len(parts) > 1 {
		l := strings.Join(parts[1:], " ")
		last = &l
	}
	return first, last
}
