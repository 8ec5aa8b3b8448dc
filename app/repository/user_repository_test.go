package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/deceroacien/backend/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Payment{},
		&models.Enrollment{},
	); err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}
	return db
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("creating fixture %T: %v", value, err)
	}
}

func TestMergeOwnershipMovesGuestStateToRealUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	realSubject := "auth0|real"
	guestSubject := "guest_ref_123"
	real := models.User{Email: "buyer@x.com", ExternalSubject: &realSubject}
	guest := models.User{Email: "buyer@x.com", ExternalSubject: &guestSubject}
	mustCreate(t, db, &real)
	mustCreate(t, db, &guest)

	// Both users hold course.pmv, so the merge hits the unique
	// (user_id, entitlement) index; the guest alone holds comunidad.acceso.
	mustCreate(t, db, &models.Enrollment{UserID: real.ID, Entitlement: "course.pmv", Source: "webhook_mp"})
	mustCreate(t, db, &models.Enrollment{UserID: guest.ID, Entitlement: "course.pmv", Source: "webhook_mp"})
	mustCreate(t, db, &models.Enrollment{UserID: guest.ID, Entitlement: "comunidad.acceso", Source: "webhook_mp"})

	mustCreate(t, db, &models.Payment{MPPaymentID: "900", UserID: &guest.ID, Status: "approved"})
	mustCreate(t, db, &models.Order{UserID: &guest.ID, ItemsJSON: "[]", Total: 149990, Currency: "CLP", Status: models.OrderStatusPaid})

	assert.NoError(t, repo.MergeOwnership(real.ID, guest.ID))

	var enrollments []models.Enrollment
	assert.NoError(t, db.Where("user_id = ?", real.ID).Order("entitlement ASC").Find(&enrollments).Error)
	keys := make([]string, len(enrollments))
	for i, e := range enrollments {
		keys[i] = e.Entitlement
	}
	assert.Equal(t, []string{"comunidad.acceso", "course.pmv"}, keys)

	var orphaned int64
	assert.NoError(t, db.Model(&models.Enrollment{}).Where("user_id = ?", guest.ID).Count(&orphaned).Error)
	assert.Zero(t, orphaned)

	var payment models.Payment
	assert.NoError(t, db.Where("mp_payment_id = ?", "900").First(&payment).Error)
	assert.Equal(t, real.ID, *payment.UserID)

	var order models.Order
	assert.NoError(t, db.Where("user_id = ?", real.ID).First(&order).Error)
	assert.Equal(t, models.OrderStatusPaid, order.Status)

	assert.ErrorIs(t, db.First(&models.User{}, guest.ID).Error, gorm.ErrRecordNotFound)
}

func TestMergeOwnershipIsIdempotentPerGuest(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	realSubject := "auth0|real"
	guestSubject := "guest_ref_456"
	real := models.User{Email: "b@x.com", ExternalSubject: &realSubject}
	guest := models.User{Email: "b@x.com", ExternalSubject: &guestSubject}
	mustCreate(t, db, &real)
	mustCreate(t, db, &guest)
	mustCreate(t, db, &models.Enrollment{UserID: guest.ID, Entitlement: "course.pmv", Source: "webhook_mp"})

	assert.NoError(t, repo.MergeOwnership(real.ID, guest.ID))
	// Merging an already absorbed guest is a no-op.
	assert.NoError(t, repo.MergeOwnership(real.ID, guest.ID))

	var count int64
	assert.NoError(t, db.Model(&models.Enrollment{}).Where("user_id = ? AND entitlement = ?", real.ID, "course.pmv").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
