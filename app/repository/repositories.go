package repository

import "gorm.io/gorm"

// Repositories bundles all repository implementations
type Repositories struct {
	User       UserRepository
	Order      OrderRepository
	Payment    PaymentRepository
	Enrollment EnrollmentRepository
	Lead       LeadRepository
	AuditLog   AuditLogRepository
}

// NewRepositories creates all repositories backed by the given DB handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Order:      NewOrderRepository(db),
		Payment:    NewPaymentRepository(db),
		Enrollment: NewEnrollmentRepository(db),
		Lead:       NewLeadRepository(db),
		AuditLog:   NewAuditLogRepository(db),
	}
}
