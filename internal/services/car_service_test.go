package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
)

func newCarSvc(t *testing.T) (*CarService, *ClientService) {
	t.Helper()
	db := newSvcDB(t)
	slots := NewSlotService(db)
	return &CarService{DB: db, Slots: slots}, &ClientService{DB: db}
}

func TestCarService_Create_OpensPendingPayment(t *testing.T) {
	carSvc, clientSvc := newCarSvc(t)
	ctx := context.Background()

	cl, err := clientSvc.Create(ctx, "Ada", "Lovelace", "", "ada@example.com")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	car, err := carSvc.Create(ctx, cl.ID, "Renault", "Clio", "CS-1")
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	if car.Status != domain.CarWaiting {
		t.Fatalf("expected waiting, got %s", car.Status)
	}
	if car.Payment == nil || car.Payment.Status != domain.PaymentPending || car.Payment.Amount != 0 {
		t.Fatalf("expected pending zero payment, got %+v", car.Payment)
	}

	// Plate is unique garage-wide.
	if _, err := carSvc.Create(ctx, cl.ID, "Other", "Car", "CS-1"); !errors.Is(err, ErrPlateTaken) {
		t.Fatalf("expected ErrPlateTaken, got %v", err)
	}
	// Owner must exist.
	if _, err := carSvc.Create(ctx, "missing", "B", "M", "CS-2"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestCarService_UpdateAndOverride(t *testing.T) {
	carSvc, clientSvc := newCarSvc(t)
	ctx := context.Background()
	cl, _ := clientSvc.Create(ctx, "A", "B", "", "ab@example.com")
	car, _ := carSvc.Create(ctx, cl.ID, "Renault", "Clio", "CS-U1")
	other, _ := carSvc.Create(ctx, cl.ID, "Peugeot", "208", "CS-U2")

	updated, err := carSvc.Update(ctx, car.ID, "Dacia", "", "")
	if err != nil || updated.Brand != "Dacia" || updated.Model != "Clio" {
		t.Fatalf("partial update failed: %+v err=%v", updated, err)
	}
	if _, err := carSvc.Update(ctx, car.ID, "", "", other.Plate); !errors.Is(err, ErrPlateTaken) {
		t.Fatalf("expected ErrPlateTaken, got %v", err)
	}

	// Administrative override bypasses derivation.
	forced, err := carSvc.OverrideStatus(ctx, car.ID, "repaired")
	if err != nil || forced.Status != domain.CarRepaired {
		t.Fatalf("override failed: %+v err=%v", forced, err)
	}
	if _, err := carSvc.OverrideStatus(ctx, car.ID, "totaled"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for bad status, got %v", err)
	}
}

func TestCarService_Delete_CascadesAndFreesSlot(t *testing.T) {
	carSvc, clientSvc := newCarSvc(t)
	repairSvc := &RepairService{DB: carSvc.DB, Slots: carSvc.Slots}
	ctx := context.Background()

	cl, _ := clientSvc.Create(ctx, "A", "B", "", "del@example.com")
	car, _ := carSvc.Create(ctx, cl.ID, "Renault", "Clio", "CS-D1")

	brake, _ := repo.GetInterventionByName(ctx, carSvc.DB, "Brake")
	r, err := repairSvc.Create(ctx, car.ID, brake.ID)
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}

	// In-progress work blocks deletion.
	if _, err := repairSvc.Start(ctx, r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := carSvc.Delete(ctx, car.ID); !errors.Is(err, ErrCannotDeleteActive) {
		t.Fatalf("expected ErrCannotDeleteActive, got %v", err)
	}

	if _, err := repairSvc.Finish(ctx, r.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := carSvc.Delete(ctx, car.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Everything is gone and the inventory is whole again.
	if _, err := repo.GetCarLean(ctx, carSvc.DB, car.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("car should be gone, got %v", err)
	}
	if _, err := repo.GetPaymentByCar(ctx, carSvc.DB, car.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("payment should be gone, got %v", err)
	}
	if n, _ := repo.CountSlots(ctx, carSvc.DB, domain.SlotRepair, false); n != 2 {
		t.Fatalf("expected both repair slots free, got %d", n)
	}
}

func TestCarService_ListAndFilter(t *testing.T) {
	carSvc, clientSvc := newCarSvc(t)
	ctx := context.Background()
	cl, _ := clientSvc.Create(ctx, "A", "B", "", "list@example.com")
	a, _ := carSvc.Create(ctx, cl.ID, "B1", "M1", "CS-L1")
	carSvc.Create(ctx, cl.ID, "B2", "M2", "CS-L2")

	cars, total, err := carSvc.List(ctx, "", 0, 10)
	if err != nil || total != 2 || len(cars) != 2 {
		t.Fatalf("list all: %d/%d err=%v", len(cars), total, err)
	}

	if _, err := carSvc.OverrideStatus(ctx, a.ID, "paid"); err != nil {
		t.Fatalf("override: %v", err)
	}
	paid, total, err := carSvc.List(ctx, "paid", 0, 10)
	if err != nil || total != 1 || paid[0].ID != a.ID {
		t.Fatalf("filtered list mismatch: %v err=%v", paid, err)
	}
}

func TestClientService_CRUDAndGuards(t *testing.T) {
	carSvc, clientSvc := newCarSvc(t)
	ctx := context.Background()

	cl, err := clientSvc.Create(ctx, "Ada", "Lovelace", "+336", " Ada@Example.com ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cl.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", cl.Email)
	}
	if _, err := clientSvc.Create(ctx, "Other", "Person", "", "ada@example.com"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	updated, err := clientSvc.Update(ctx, cl.ID, "", "Byron", "", "")
	if err != nil || updated.LastName != "Byron" || updated.FirstName != "Ada" {
		t.Fatalf("partial update failed: %+v err=%v", updated, err)
	}

	// Owning a car blocks deletion.
	if _, err := carSvc.Create(ctx, cl.ID, "B", "M", "CL-1"); err != nil {
		t.Fatalf("create car: %v", err)
	}
	if err := clientSvc.Delete(ctx, cl.ID); !errors.Is(err, ErrClientHasCars) {
		t.Fatalf("expected ErrClientHasCars, got %v", err)
	}

	cars, err := clientSvc.Cars(ctx, cl.ID)
	if err != nil || len(cars) != 1 {
		t.Fatalf("cars listing mismatch: %v err=%v", cars, err)
	}

	clients, total, err := clientSvc.List(ctx, 0, 10)
	if err != nil || total != 1 || len(clients) != 1 {
		t.Fatalf("list mismatch: %d/%d err=%v", len(clients), total, err)
	}
}
