package allocation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/notification"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/patient"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/resource"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/staff"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type fakeResources struct {
	resources map[uuid.UUID]*resource.Resource
}

func (f *fakeResources) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*resource.Resource, error) {
	var out []*resource.Resource
	for _, id := range ids {
		if r, ok := f.resources[id]; ok {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeResources) Claim(_ context.Context, id, patientID uuid.UUID) error {
	r, ok := f.resources[id]
	if !ok {
		return apperr.NotFound("resource %s not found", id)
	}
	if r.Status != resource.StatusAvailable || !r.IsFunctional {
		return apperr.Conflict("resource %s is not available", id)
	}
	r.Status = resource.StatusOccupied
	pid := patientID
	r.AssignedPatientID = &pid
	return nil
}

func (f *fakeResources) Release(_ context.Context, id, patientID uuid.UUID) error {
	r, ok := f.resources[id]
	if !ok || r.AssignedPatientID == nil || *r.AssignedPatientID != patientID {
		return nil
	}
	r.Status = resource.StatusAvailable
	r.AssignedPatientID = nil
	return nil
}

func (f *fakeResources) ReleaseAllForPatient(_ context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	var freed []uuid.UUID
	for _, r := range f.resources {
		if r.AssignedPatientID != nil && *r.AssignedPatientID == patientID {
			r.Status = resource.StatusAvailable
			r.AssignedPatientID = nil
			freed = append(freed, r.ID)
		}
	}
	return freed, nil
}

type fakePatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (f *fakePatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperr.NotFound("patient not found")
	}
	cp := *p
	cp.AssignedResources = append([]uuid.UUID(nil), p.AssignedResources...)
	return &cp, nil
}

func (f *fakePatients) AddResources(_ context.Context, patientID uuid.UUID, ids []uuid.UUID) error {
	p, ok := f.patients[patientID]
	if !ok {
		return apperr.NotFound("patient not found")
	}
	for _, id := range ids {
		if !p.HasResource(id) {
			p.AssignedResources = append(p.AssignedResources, id)
		}
	}
	return nil
}

func (f *fakePatients) RemoveResource(_ context.Context, patientID, resourceID uuid.UUID) error {
	p, ok := f.patients[patientID]
	if !ok {
		return apperr.NotFound("patient not found")
	}
	out := p.AssignedResources[:0]
	for _, id := range p.AssignedResources {
		if id != resourceID {
			out = append(out, id)
		}
	}
	p.AssignedResources = out
	return nil
}

func (f *fakePatients) Discharge(_ context.Context, patientID uuid.UUID) error {
	p, ok := f.patients[patientID]
	if !ok {
		return apperr.NotFound("patient not found")
	}
	p.Status = patient.StatusDischarged
	p.AssignedResources = nil
	return nil
}

type fakeStaff struct {
	nurses []*staff.Staff
}

func (f *fakeStaff) ListByRole(_ context.Context, role staff.Role) ([]*staff.Staff, error) {
	if role == staff.RoleNurse {
		return f.nurses, nil
	}
	return nil, nil
}

type recordingSink struct {
	sent []*notification.Notification
	fail bool
}

func (s *recordingSink) Notify(_ context.Context, n *notification.Notification) error {
	if s.fail {
		return errors.New("sink unavailable")
	}
	cp := *n
	s.sent = append(s.sent, &cp)
	return nil
}

type fixture struct {
	svc       *Service
	resources *fakeResources
	patients  *fakePatients
	sink      *recordingSink
}

func newFixture(nurseCount int) *fixture {
	res := &fakeResources{resources: make(map[uuid.UUID]*resource.Resource)}
	pat := &fakePatients{patients: make(map[uuid.UUID]*patient.Patient)}
	var nurses []*staff.Staff
	for i := 0; i < nurseCount; i++ {
		nurses = append(nurses, &staff.Staff{ID: uuid.New(), Role: staff.RoleNurse})
	}
	sink := &recordingSink{}
	svc := NewService(nil, res, pat, &fakeStaff{nurses: nurses}, sink, zerolog.Nop())
	return &fixture{svc: svc, resources: res, patients: pat, sink: sink}
}

func (f *fixture) addPatient(status patient.Status) *patient.Patient {
	p := &patient.Patient{ID: uuid.New(), FirstName: "Hedi", LastName: "Amri", Status: status}
	f.patients.patients[p.ID] = p
	return p
}

func (f *fixture) addResource(typ resource.Type, status resource.Status) *resource.Resource {
	r := &resource.Resource{ID: uuid.New(), Type: typ, Status: status, IsFunctional: true}
	f.resources.resources[r.ID] = r
	return r
}

func TestAssignResources(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	p := f.addPatient(patient.StatusWaitingForDoctor)
	bed := f.addResource(resource.TypeBed, resource.StatusAvailable)
	mon := f.addResource(resource.TypeMonitor, resource.StatusAvailable)

	got, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{bed.ID, mon.ID})
	if err != nil {
		t.Fatalf("AssignResources: %v", err)
	}
	if len(got.AssignedResources) != 2 {
		t.Errorf("patient holds %d resources, want 2", len(got.AssignedResources))
	}
	for _, r := range []*resource.Resource{f.resources.resources[bed.ID], f.resources.resources[mon.ID]} {
		if r.Status != resource.StatusOccupied {
			t.Errorf("resource %s status = %q, want Occupied", r.ID, r.Status)
		}
		if r.AssignedPatientID == nil || *r.AssignedPatientID != p.ID {
			t.Errorf("resource %s not bound back to patient", r.ID)
		}
	}
}

func TestAssignResourcesAllOrNothing(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	p := f.addPatient(patient.StatusUnderExamination)
	good := f.addResource(resource.TypeVentilator, resource.StatusAvailable)
	taken := f.addResource(resource.TypeBed, resource.StatusOccupied)

	_, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{good.ID, taken.ID})
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), taken.ID.String()) {
		t.Errorf("conflict should name the offending resource, got %q", err)
	}

	// Nothing moved: the good resource stayed free and the patient set is
	// untouched.
	if f.resources.resources[good.ID].Status != resource.StatusAvailable {
		t.Error("available resource must not be claimed when the batch fails")
	}
	got, _ := f.patients.GetByID(ctx, p.ID)
	if len(got.AssignedResources) != 0 {
		t.Error("patient set must stay empty when the batch fails")
	}
}

func TestAssignResourcesUnknownResource(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	p := f.addPatient(patient.StatusWaitingForDoctor)
	missing := uuid.New()

	_, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{missing})
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), missing.String()) {
		t.Errorf("error should name the missing id, got %q", err)
	}
}

func TestAssignResourcesUnknownPatient(t *testing.T) {
	f := newFixture(0)
	r := f.addResource(resource.TypeBed, resource.StatusAvailable)

	if _, err := f.svc.AssignResources(context.Background(), uuid.New(), []uuid.UUID{r.ID}); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if r := f.resources.resources[r.ID]; r.Status != resource.StatusAvailable {
		t.Error("resource must stay free when the patient is unknown")
	}
}

func TestAssignResourcesToDischargedPatient(t *testing.T) {
	f := newFixture(0)
	p := f.addPatient(patient.StatusDischarged)
	r := f.addResource(resource.TypeBed, resource.StatusAvailable)

	if _, err := f.svc.AssignResources(context.Background(), p.ID, []uuid.UUID{r.ID}); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAssignResourcesEmptyList(t *testing.T) {
	f := newFixture(0)
	p := f.addPatient(patient.StatusWaitingForDoctor)

	if _, err := f.svc.AssignResources(context.Background(), p.ID, nil); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAssignResourcesDuplicateIDs(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	p := f.addPatient(patient.StatusWaitingForDoctor)
	r := f.addResource(resource.TypeBed, resource.StatusAvailable)

	got, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{r.ID, r.ID})
	if err != nil {
		t.Fatalf("AssignResources: %v", err)
	}
	if len(got.AssignedResources) != 1 {
		t.Errorf("patient holds %d resources, want 1", len(got.AssignedResources))
	}
}

func TestReleaseResource(t *testing.T) {
	f := newFixture(0)
	ctx := context.Background()

	p := f.addPatient(patient.StatusUnderExamination)
	r := f.addResource(resource.TypeWheelchair, resource.StatusAvailable)
	if _, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{r.ID}); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	if err := f.svc.ReleaseResource(ctx, p.ID, r.ID); err != nil {
		t.Fatalf("ReleaseResource: %v", err)
	}
	if f.resources.resources[r.ID].Status != resource.StatusAvailable {
		t.Error("released resource should be Available")
	}
	got, _ := f.patients.GetByID(ctx, p.ID)
	if len(got.AssignedResources) != 0 {
		t.Error("released resource should leave the patient set")
	}

	// Releasing again, and releasing something never held, both succeed.
	if err := f.svc.ReleaseResource(ctx, p.ID, r.ID); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}
	if err := f.svc.ReleaseResource(ctx, p.ID, uuid.New()); err != nil {
		t.Errorf("releasing a non-member should be a no-op, got %v", err)
	}
}

func TestDischargePatient(t *testing.T) {
	f := newFixture(2)
	ctx := context.Background()

	p := f.addPatient(patient.StatusUnderExamination)
	bed := f.addResource(resource.TypeBed, resource.StatusAvailable)
	vent := f.addResource(resource.TypeVentilator, resource.StatusAvailable)
	if _, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{bed.ID, vent.ID}); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	got, err := f.svc.DischargePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	if got.Status != patient.StatusDischarged {
		t.Errorf("status = %q, want Discharged", got.Status)
	}
	if len(got.AssignedResources) != 0 {
		t.Error("discharged patient should hold no resources")
	}
	for _, r := range f.resources.resources {
		if r.Status != resource.StatusAvailable || r.AssignedPatientID != nil {
			t.Errorf("resource %s should be freed, got %q", r.ID, r.Status)
		}
	}

	// One notification per nurse, each naming the freed equipment kinds.
	if len(f.sink.sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(f.sink.sent))
	}
	for _, n := range f.sink.sent {
		if n.RecipientKind != notification.RecipientNurse {
			t.Errorf("recipient kind = %q, want Nurse", n.RecipientKind)
		}
		if n.PatientID == nil || *n.PatientID != p.ID {
			t.Error("notification should reference the discharged patient")
		}
		if len(n.ResourceTypes) != 2 {
			t.Errorf("resource types = %v, want [Bed Ventilator]", n.ResourceTypes)
		}
		if !strings.Contains(n.Message, "Bed") || !strings.Contains(n.Message, "Ventilator") {
			t.Errorf("message should list freed types, got %q", n.Message)
		}
	}
}

func TestDischargePatientWithNoResources(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	p := f.addPatient(patient.StatusWaitingForDoctor)
	got, err := f.svc.DischargePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	if got.Status != patient.StatusDischarged {
		t.Errorf("status = %q, want Discharged", got.Status)
	}
	// No equipment came back to the pool, so nobody is told anything.
	if len(f.sink.sent) != 0 {
		t.Fatalf("sent %d notifications, want 0", len(f.sink.sent))
	}
}

func TestDischargePatientUnknown(t *testing.T) {
	f := newFixture(1)
	if _, err := f.svc.DischargePatient(context.Background(), uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if len(f.sink.sent) != 0 {
		t.Error("no notifications for a failed discharge")
	}
}

func TestDischargeSurvivesSinkFailure(t *testing.T) {
	f := newFixture(3)
	f.sink.fail = true
	ctx := context.Background()

	p := f.addPatient(patient.StatusUnderExamination)
	r := f.addResource(resource.TypeStretcher, resource.StatusAvailable)
	if _, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{r.ID}); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	got, err := f.svc.DischargePatient(ctx, p.ID)
	if err != nil {
		t.Fatalf("sink failure must not fail the discharge: %v", err)
	}
	if got.Status != patient.StatusDischarged {
		t.Errorf("status = %q, want Discharged", got.Status)
	}
	if f.resources.resources[r.ID].Status != resource.StatusAvailable {
		t.Error("resource should stay freed despite the sink failure")
	}
}

func TestDischargeNotifiesTypesOnce(t *testing.T) {
	f := newFixture(1)
	ctx := context.Background()

	p := f.addPatient(patient.StatusUnderExamination)
	b1 := f.addResource(resource.TypeBed, resource.StatusAvailable)
	b2 := f.addResource(resource.TypeBed, resource.StatusAvailable)
	if _, err := f.svc.AssignResources(ctx, p.ID, []uuid.UUID{b1.ID, b2.ID}); err != nil {
		t.Fatalf("AssignResources: %v", err)
	}

	if _, err := f.svc.DischargePatient(ctx, p.ID); err != nil {
		t.Fatalf("DischargePatient: %v", err)
	}
	types := f.sink.sent[0].ResourceTypes
	if len(types) != 1 || types[0] != "Bed" {
		t.Errorf("freed types = %v, want [Bed]", types)
	}
}
