package models

import "time"

// Enrollment grants a user access to a named entitlement key (e.g.
// "course.pmv"). Duplicate grants are harmless; the unique index plus
// conflict-do-nothing inserts keep the table free of duplicate rows.
type Enrollment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:ux_enrollments_user_entitlement,unique,priority:1" json:"user_id"`
	Entitlement string    `gorm:"type:varchar(100);not null;index:ux_enrollments_user_entitlement,unique,priority:2" json:"entitlement"`
	Source      string    `gorm:"type:varchar(50)" json:"source"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
