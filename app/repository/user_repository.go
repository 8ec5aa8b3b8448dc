package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// UpsertBySubject inserts a user keyed by the identity-provider subject id.
// On conflict the stored email is refreshed; the subject id itself is
// immutable once set.
func (r *userRepository) UpsertBySubject(subject, email string, firstName, lastName *string) (*models.User, error) {
	user := &models.User{
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		ExternalSubject: &subject,
	}
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "external_subject"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"updated_at",
		}),
	}).Create(user).Error; err != nil {
		return nil, err
	}

	// Ensure ID is populated after upsert.
	var stored models.User
	if err := r.db.Where("external_subject = ?", subject).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetByID retrieves a user by internal id
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBySubject retrieves a user by identity-provider subject id
func (r *userRepository) GetBySubject(subject string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("external_subject = ?", subject).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByEmail returns every row sharing an email, oldest first. Multiple
// rows appear when a guest checkout preceded the real sign-up.
func (r *userRepository) ListByEmail(email string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("email = ?", email).Order("created_at ASC").Find(&users).Error
	return users, err
}

// AssignSubject attaches a verified subject id to an existing row.
func (r *userRepository) AssignSubject(userID uint, subject string) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).
		Update("external_subject", subject).Error
}

// MergeOwnership reassigns everything owned by guestUserID to realUserID and
// deletes the guest row, all inside one transaction so a crash can never
// leave entitlements attached to a deleted user or a half-merged guest.
func (r *userRepository) MergeOwnership(realUserID, guestUserID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Enrollments carry a unique (user_id, entitlement) index, so a plain
		// UPDATE can collide when both users hold the same grant. Re-insert
		// under the real user with conflict-do-nothing, then drop the guest rows.
		var guestEnrollments []models.Enrollment
		if err := tx.Where("user_id = ?", guestUserID).Find(&guestEnrollments).Error; err != nil {
			return err
		}
		for _, e := range guestEnrollments {
			moved := models.Enrollment{
				UserID:      realUserID,
				Entitlement: e.Entitlement,
				Source:      e.Source,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "user_id"},
					{Name: "entitlement"},
				},
				DoNothing: true,
			}).Create(&moved).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", guestUserID).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Payment{}).Where("user_id = ?", guestUserID).
			Update("user_id", realUserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("user_id = ?", guestUserID).
			Update("user_id", realUserID).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, guestUserID).Error
	})
}
