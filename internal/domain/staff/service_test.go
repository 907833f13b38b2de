package staff

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/cache"
)

type mockRepo struct {
	staff       map[uuid.UUID]*Staff
	listByRoleN int
}

func newMockRepo() *mockRepo {
	return &mockRepo{staff: make(map[uuid.UUID]*Staff)}
}

func (m *mockRepo) Create(_ context.Context, s *Staff) error {
	for _, existing := range m.staff {
		if existing.Email == s.Email {
			return apperr.Conflict("staff email %q already exists", s.Email)
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.staff[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Staff, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, apperr.NotFound("staff member not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Staff, error) {
	for _, s := range m.staff {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("staff member not found")
}

func (m *mockRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.staff[s.ID]; !ok {
		return apperr.NotFound("staff member not found")
	}
	cp := *s
	m.staff[s.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.staff, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Staff, int, error) {
	var all []*Staff
	for _, s := range m.staff {
		cp := *s
		all = append(all, &cp)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListByRole(_ context.Context, role Role) ([]*Staff, error) {
	m.listByRoleN++
	var out []*Staff
	for _, s := range m.staff {
		if s.Role == role {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	c := cache.NewMemoryCache()
	return NewService(repo, c, zerolog.Nop()), repo
}

func doctor(email string) *Staff {
	return &Staff{
		FirstName: "Ines", LastName: "Haddad", Email: email, Role: RoleDoctor,
		Doctor: &DoctorProfile{Specialty: "Cardiology", LicenseNumber: "MD-1001"},
	}
}

func nurse(email, ward string) *Staff {
	return &Staff{
		FirstName: "Rania", LastName: "Bouzid", Email: email, Role: RoleNurse,
		Nurse: &NurseProfile{Ward: ward, Shift: "Night"},
	}
}

func TestCreateStaff(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	d := doctor("ines@hospital.tn")
	if err := svc.Create(ctx, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Nurse != nil {
		t.Error("doctor record must not carry a nurse profile")
	}
}

func TestCreateStaffValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		st   *Staff
	}{
		{"missing name", &Staff{Email: "a@b.tn", Role: RoleAdmin}},
		{"bad email", &Staff{FirstName: "A", LastName: "B", Email: "not-an-email", Role: RoleAdmin}},
		{"unknown role", &Staff{FirstName: "A", LastName: "B", Email: "a@b.tn", Role: "Janitor"}},
		{"doctor without profile", &Staff{FirstName: "A", LastName: "B", Email: "a@b.tn", Role: RoleDoctor}},
		{"nurse without profile", &Staff{FirstName: "A", LastName: "B", Email: "a@b.tn", Role: RoleNurse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(ctx, tt.st); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateStaffAdminDropsProfiles(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	st := &Staff{
		FirstName: "Omar", LastName: "Jlassi", Email: "omar@hospital.tn", Role: RoleAdmin,
		Doctor: &DoctorProfile{Specialty: "leftover"},
	}
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.Doctor != nil || st.Nurse != nil {
		t.Error("admin record must carry no profile payload")
	}
}

func TestCreateStaffDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if err := svc.Create(ctx, doctor("dup@hospital.tn")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Create(ctx, nurse("dup@hospital.tn", "ER")); !apperr.IsConflict(err) {
		t.Errorf("duplicate email should conflict, got %v", err)
	}
}

func TestListByRoleUsesCache(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Create(ctx, nurse("n1@hospital.tn", "ER")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Create(ctx, nurse("n2@hospital.tn", "ICU")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.ListByRole(ctx, RoleNurse)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("nurse count = %d, want 2", len(first))
	}
	hits := repo.listByRoleN

	second, err := svc.ListByRole(ctx, RoleNurse)
	if err != nil {
		t.Fatalf("ListByRole cached: %v", err)
	}
	if len(second) != 2 {
		t.Errorf("cached nurse count = %d, want 2", len(second))
	}
	if repo.listByRoleN != hits {
		t.Errorf("second listing should hit the cache, repo calls went %d -> %d", hits, repo.listByRoleN)
	}
}

func TestListByRoleCacheInvalidatedOnWrite(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if err := svc.Create(ctx, nurse("n1@hospital.tn", "ER")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.ListByRole(ctx, RoleNurse); err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	hits := repo.listByRoleN

	// A new nurse must show up on the next listing.
	if err := svc.Create(ctx, nurse("n2@hospital.tn", "ICU")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	items, err := svc.ListByRole(ctx, RoleNurse)
	if err != nil {
		t.Fatalf("ListByRole after create: %v", err)
	}
	if repo.listByRoleN != hits+1 {
		t.Error("create should invalidate the role listing cache")
	}
	if len(items) != 2 {
		t.Errorf("nurse count = %d, want 2", len(items))
	}
}

func TestUpdateStaffRoleChangeInvalidatesBothRoles(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	st := nurse("move@hospital.tn", "ER")
	if err := svc.Create(ctx, st); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.ListByRole(ctx, RoleNurse); err != nil {
		t.Fatalf("ListByRole: %v", err)
	}

	st.Role = RoleDoctor
	st.Doctor = &DoctorProfile{Specialty: "Emergency", LicenseNumber: "MD-7"}
	st.Nurse = nil
	if _, err := svc.Update(ctx, st.ID, st); err != nil {
		t.Fatalf("Update: %v", err)
	}

	nurses, err := svc.ListByRole(ctx, RoleNurse)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(nurses) != 0 {
		t.Errorf("nurse listing should be empty after the role change, got %d", len(nurses))
	}
	doctors, err := svc.ListByRole(ctx, RoleDoctor)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(doctors) != 1 {
		t.Errorf("doctor listing should have 1 entry, got %d", len(doctors))
	}
}
