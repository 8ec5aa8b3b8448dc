package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// leadRepository implements the LeadRepository interface
type leadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository instance
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

// CreateIfNotExists stores a lead unless the (email, source) pair was
// already captured. Returns whether a new row was written.
func (r *leadRepository) CreateIfNotExists(lead *models.DownloadLead) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "email"},
			{Name: "source"},
		},
		DoNothing: true,
	}).Create(lead)
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected == 0 {
		// Populate the id of the existing row for the response.
		var stored models.DownloadLead
		if err := r.db.Where("email = ? AND source = ?", lead.Email, lead.Source).
			First(&stored).Error; err == nil {
			lead.ID = stored.ID
		}
		return false, nil
	}
	return true, nil
}
