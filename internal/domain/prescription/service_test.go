package prescription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/patient"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type mockRepo struct {
	prescriptions map[uuid.UUID]*Prescription
}

func newMockRepo() *mockRepo {
	return &mockRepo{prescriptions: make(map[uuid.UUID]*Prescription)}
}

func (m *mockRepo) Create(_ context.Context, p *Prescription) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.prescriptions[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, apperr.NotFound("prescription not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Prescription) error {
	if _, ok := m.prescriptions[p.ID]; !ok {
		return apperr.NotFound("prescription not found")
	}
	cp := *p
	m.prescriptions[p.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.prescriptions, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, patientID *uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	var all []*Prescription
	for _, p := range m.prescriptions {
		if patientID != nil && p.PatientID != *patientID {
			continue
		}
		cp := *p
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

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	cp := *p
	return &cp, nil
}

// mockEngine returns a fixed discount per insurance id; the coverage engine
// itself is tested in its own package.
type mockEngine struct {
	byInsurance map[uuid.UUID]int
}

func (m *mockEngine) DiscountForPatient(_ context.Context, insuranceID, _ *uuid.UUID) (int, error) {
	if insuranceID == nil {
		return 0, nil
	}
	return m.byInsurance[*insuranceID], nil
}

type fixture struct {
	svc      *Service
	patients *mockPatients
	engine   *mockEngine
}

func newFixture() *fixture {
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	engine := &mockEngine{byInsurance: make(map[uuid.UUID]int)}
	return &fixture{
		svc:      NewService(newMockRepo(), patients, engine),
		patients: patients,
		engine:   engine,
	}
}

func (f *fixture) addPatient(discount int) *patient.Patient {
	insID := uuid.New()
	f.engine.byInsurance[insID] = discount
	p := &patient.Patient{ID: uuid.New(), FirstName: "Khaled", LastName: "Saidi", InsuranceID: &insID}
	f.patients.patients[p.ID] = p
	return p
}

func TestCreatePrescriptionComputesDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.addPatient(40)
	rx, err := f.svc.Create(ctx, Input{PatientID: p.ID, Medication: "Amoxicillin", Dosage: "500mg"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rx.Discount != 40 {
		t.Errorf("discount = %d, want 40", rx.Discount)
	}
}

func TestCreatePrescriptionUncoveredPatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := &patient.Patient{ID: uuid.New(), FirstName: "Aziz", LastName: "Mejri"}
	f.patients.patients[p.ID] = p

	rx, err := f.svc.Create(ctx, Input{PatientID: p.ID, Medication: "Ibuprofen"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rx.Discount != 0 {
		t.Errorf("discount = %d, want 0 for an uncovered patient", rx.Discount)
	}
}

func TestCreatePrescriptionValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p := f.addPatient(10)

	if _, err := f.svc.Create(ctx, Input{Medication: "X"}); !apperr.IsValidation(err) {
		t.Errorf("missing patient_id should be a validation error, got %v", err)
	}
	if _, err := f.svc.Create(ctx, Input{PatientID: p.ID}); !apperr.IsValidation(err) {
		t.Errorf("missing medication should be a validation error, got %v", err)
	}
	if _, err := f.svc.Create(ctx, Input{PatientID: uuid.New(), Medication: "X"}); !apperr.IsNotFound(err) {
		t.Errorf("unknown patient should be not found, got %v", err)
	}
}

func TestUpdatePrescriptionRecomputesDiscount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := f.addPatient(25)
	rx, err := f.svc.Create(ctx, Input{PatientID: p.ID, Medication: "Paracetamol"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rx.Discount != 25 {
		t.Fatalf("discount = %d, want 25", rx.Discount)
	}

	// The patient's coverage improved between the two writes.
	f.engine.byInsurance[*p.InsuranceID] = 80
	updated, err := f.svc.Update(ctx, rx.ID, Input{PatientID: p.ID, Medication: "Paracetamol", Dosage: "1g"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Discount != 80 {
		t.Errorf("updated discount = %d, want 80", updated.Discount)
	}
}

func TestListPrescriptionsByPatient(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p1 := f.addPatient(0)
	p2 := f.addPatient(0)
	for _, pid := range []uuid.UUID{p1.ID, p1.ID, p2.ID} {
		if _, err := f.svc.Create(ctx, Input{PatientID: pid, Medication: "Med"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	_, total, err := f.svc.List(ctx, &p1.ID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 {
		t.Errorf("patient 1 has %d prescriptions, want 2", total)
	}
}
