package directory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository for exercising the merge
// logic without a database.
type fakeUserRepo struct {
	users  []models.User
	nextID uint
	merges [][2]uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (f *fakeUserRepo) add(email string, subject *string, createdAt time.Time) models.User {
	u := models.User{ID: f.nextID, Email: email, ExternalSubject: subject, CreatedAt: createdAt}
	f.nextID++
	f.users = append(f.users, u)
	return u
}

func (f *fakeUserRepo) UpsertBySubject(subject, email string, firstName, lastName *string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ExternalSubject != nil && *f.users[i].ExternalSubject == subject {
			f.users[i].Email = email
			u := f.users[i]
			return &u, nil
		}
	}
	u := f.add(email, &subject, time.Now())
	u.FirstName = firstName
	u.LastName = lastName
	return &u, nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetBySubject(subject string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ExternalSubject != nil && *f.users[i].ExternalSubject == subject {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByEmail(email string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Email == email {
			out = append(out, u)
		}
	}
	// Oldest first, mirroring the SQL ORDER BY created_at ASC.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) AssignSubject(userID uint, subject string) error {
	for i := range f.users {
		if f.users[i].ID == userID {
			s := subject
			f.users[i].ExternalSubject = &s
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) MergeOwnership(realUserID, guestUserID uint) error {
	f.merges = append(f.merges, [2]uint{realUserID, guestUserID})
	kept := f.users[:0]
	for _, u := range f.users {
		if u.ID != guestUserID {
			kept = append(kept, u)
		}
	}
	f.users = kept
	return nil
}

func strPtr(s string) *string { return &s }

func TestUpsertBySubjectValidatesInput(t *testing.T) {
	svc := NewService(newFakeUserRepo(), nil)
	if _, err := svc.UpsertBySubject(context.Background(), "", "a@x.com", nil, nil); err != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if _, err := svc.UpsertBySubject(context.Background(), "uid-1", "", nil, nil); err != ErrMissingFields {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestUpsertBySubjectNormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, nil)
	u, err := svc.UpsertBySubject(context.Background(), "uid-1", "  A@X.Com ", nil, nil)
	if err != nil {
		t.Fatalf("UpsertBySubject: %v", err)
	}
	if u.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
}

func TestReconcileGuestMergesIntoSubjectRow(t *testing.T) {
	repo := newFakeUserRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	guest := repo.add("a@x.com", strPtr("guest_ref_1"), base)
	real := repo.add("a@x.com", strPtr("uid-real"), base.Add(time.Hour))

	svc := NewService(repo, nil)
	merged, survivor, err := svc.ReconcileGuest(context.Background(), "uid-real", "a@x.com")
	if err != nil {
		t.Fatalf("ReconcileGuest: %v", err)
	}
	if !merged {
		t.Fatalf("expected a merge to happen")
	}
	// The row already carrying the subject wins even though it is newer.
	if survivor.ID != real.ID {
		t.Fatalf("expected survivor %d, got %d", real.ID, survivor.ID)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one user row left, got %d", len(repo.users))
	}
	if len(repo.merges) != 1 || repo.merges[0] != [2]uint{real.ID, guest.ID} {
		t.Fatalf("unexpected merges: %v", repo.merges)
	}
}

func TestReconcileGuestOldestRowWinsWithoutSubjectMatch(t *testing.T) {
	repo := newFakeUserRepo()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := repo.add("a@x.com", strPtr("guest_ref_1"), base)
	repo.add("a@x.com", nil, base.Add(time.Hour))

	svc := NewService(repo, nil)
	merged, survivor, err := svc.ReconcileGuest(context.Background(), "uid-new", "a@x.com")
	if err != nil {
		t.Fatalf("ReconcileGuest: %v", err)
	}
	if !merged {
		t.Fatalf("expected a merge to happen")
	}
	if survivor.ID != oldest.ID {
		t.Fatalf("expected oldest row %d to win, got %d", oldest.ID, survivor.ID)
	}
	if survivor.ExternalSubject == nil || *survivor.ExternalSubject != "uid-new" {
		t.Fatalf("expected subject to be attached to the survivor")
	}
}

func TestReconcileGuestNoRows(t *testing.T) {
	svc := NewService(newFakeUserRepo(), nil)
	merged, survivor, err := svc.ReconcileGuest(context.Background(), "uid-1", "nobody@x.com")
	if err != nil {
		t.Fatalf("ReconcileGuest: %v", err)
	}
	if merged || survivor != nil {
		t.Fatalf("expected no-op for unknown email")
	}
}

func TestCreateGuestSubjectShape(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, nil)
	u, err := svc.CreateGuest(context.Background(), "Payer@X.com", "a@x.com")
	if err != nil {
		t.Fatalf("CreateGuest: %v", err)
	}
	if u.Email != "payer@x.com" {
		t.Fatalf("expected normalized email, got %q", u.Email)
	}
	if u.ExternalSubject == nil || !strings.HasPrefix(*u.ExternalSubject, models.GuestSubjectPrefix) {
		t.Fatalf("expected synthetic guest subject, got %v", u.ExternalSubject)
	}
	if len(*u.ExternalSubject) > 128 {
		t.Fatalf("guest subject exceeds column width")
	}
	if !u.IsGuest() {
		t.Fatalf("expected IsGuest to report true")
	}
}
