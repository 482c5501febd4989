package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-garage-backend/internal/repo"
)

func TestCatalogService_List_SeededOffering(t *testing.T) {
	db := newSvcDB(t)
	svc := &CatalogService{DB: db}

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != len(repo.DefaultCatalog) {
		t.Fatalf("expected %d entries, got %d", len(repo.DefaultCatalog), len(items))
	}
	// Seeded order is the builtin order.
	for i, want := range repo.DefaultCatalog {
		if items[i].Name != want.Name || items[i].Price != want.Price {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, items[i], want)
		}
	}
}

func TestCatalogService_FindOrCreate(t *testing.T) {
	db := newSvcDB(t)
	svc := &CatalogService{DB: db}
	ctx := context.Background()

	// Existing entry resolves.
	it, err := svc.FindOrCreate(ctx, "Clutch")
	if err != nil || it.Price != 350.00 {
		t.Fatalf("existing resolve failed: %+v err=%v", it, err)
	}

	// Remove a builtin row, then resolve it again: recreated from the
	// builtin triple.
	if err := repo.DeleteIntervention(ctx, db, it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	it, err = svc.FindOrCreate(ctx, "Clutch")
	if err != nil || it.Price != 350.00 || it.DurationSeconds != 7200 {
		t.Fatalf("recreate failed: %+v err=%v", it, err)
	}

	// Unknown names are rejected, not invented.
	if _, err := svc.FindOrCreate(ctx, "Flux Capacitor"); !errors.Is(err, ErrInterventionNotFound) {
		t.Fatalf("expected ErrInterventionNotFound, got %v", err)
	}
}

func TestCatalogService_CreateUpdateDelete(t *testing.T) {
	db := newSvcDB(t)
	svc := &CatalogService{DB: db}
	ctx := context.Background()

	it, err := svc.Create(ctx, "Windshield", 240.00, 3600)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, "Windshield", 99.00, 60); !errors.Is(err, ErrInterventionExists) {
		t.Fatalf("expected ErrInterventionExists, got %v", err)
	}

	price := 260.00
	updated, err := svc.Update(ctx, it.ID, &price, nil)
	if err != nil || updated.Price != 260.00 || updated.DurationSeconds != 3600 {
		t.Fatalf("update failed: %+v err=%v", updated, err)
	}

	if err := svc.Delete(ctx, it.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, it.ID); !errors.Is(err, ErrInterventionNotFound) {
		t.Fatalf("expected ErrInterventionNotFound after delete, got %v", err)
	}
}

func TestCatalogService_ReferencedEntryIsImmutable(t *testing.T) {
	db := newSvcDB(t)
	catalog := &CatalogService{DB: db}
	repairSvc := &RepairService{DB: db, Slots: NewSlotService(db)}
	ctx := context.Background()

	carID := seedCar(t, db, "CA-REF")
	brake, _ := repo.GetInterventionByName(ctx, db, "Brake")
	if _, err := repairSvc.Create(ctx, carID, brake.ID); err != nil {
		t.Fatalf("create repair: %v", err)
	}

	price := 1.00
	if _, err := catalog.Update(ctx, brake.ID, &price, nil); !errors.Is(err, ErrInterventionInUse) {
		t.Fatalf("expected ErrInterventionInUse on update, got %v", err)
	}
	if err := catalog.Delete(ctx, brake.ID); !errors.Is(err, ErrInterventionInUse) {
		t.Fatalf("expected ErrInterventionInUse on delete, got %v", err)
	}

	// Quote still reflects the untouched catalog price.
	billing := &BillingService{DB: db}
	q, err := billing.Quote(ctx, carID)
	if err != nil || q.Total != 120.00 {
		t.Fatalf("quote drifted: %+v err=%v", q, err)
	}
}
