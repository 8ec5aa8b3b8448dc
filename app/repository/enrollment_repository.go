package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// enrollmentRepository implements the EnrollmentRepository interface
type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository instance
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// Grant upserts a (user, entitlement) pair. Duplicate grants are absorbed by
// the unique index with conflict-do-nothing.
func (r *enrollmentRepository) Grant(userID uint, entitlement, source string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "entitlement"},
		},
		DoNothing: true,
	}).Create(&models.Enrollment{
		UserID:      userID,
		Entitlement: entitlement,
		Source:      source,
	}).Error
}

// ListKeysByUser returns the entitlement keys granted to a user.
func (r *enrollmentRepository) ListKeysByUser(userID uint) ([]string, error) {
	var keys []string
	err := r.db.Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("entitlement", &keys).Error
	return keys, err
}
