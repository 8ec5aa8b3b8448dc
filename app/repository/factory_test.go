package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactoryReturnsSingletonRepositories(t *testing.T) {
	f := NewFactory(nil)

	r1 := f.GetRepositories()
	r2 := f.GetRepositories()
	assert.Same(t, r1, r2)

	assert.Equal(t, r1.User, f.GetUserRepository())
	assert.Equal(t, r1.Order, f.GetOrderRepository())
	assert.Equal(t, r1.Payment, f.GetPaymentRepository())
	assert.Equal(t, r1.Enrollment, f.GetEnrollmentRepository())
	assert.Equal(t, r1.Lead, f.GetLeadRepository())
	assert.Equal(t, r1.AuditLog, f.GetAuditLogRepository())
}

func TestGlobalFactory(t *testing.T) {
	InitializeFactory(nil)
	// Repeated initialization keeps the first instance.
	InitializeFactory(nil)

	assert.Same(t, GetGlobalFactory(), GetGlobalFactory())
	assert.Same(t, GetGlobalFactory().GetRepositories(), GetGlobalRepositories())
}
