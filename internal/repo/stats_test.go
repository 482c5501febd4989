package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

func newTestDB(t *testing.T, seed bool) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if seed {
		if err := Seed(context.Background(), db); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func mustCar(t *testing.T, db *gorm.DB, plate string) *domain.Car {
	t.Helper()
	ctx := context.Background()
	cl, err := CreateClient(ctx, db, "Stats", "Owner", "", plate+"@example.com")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	car, err := CreateCar(ctx, db, cl.ID, "Brand", "Model", plate)
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

func TestCarsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, false)
	count, maxAt, err := CarsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("CarsStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestCarsStats_CountAndMax(t *testing.T) {
	db := newTestDB(t, false)
	mustCar(t, db, "ST-1")
	b := mustCar(t, db, "ST-2")

	count, maxAt, err := CarsStats(context.Background(), db)
	if err != nil {
		t.Fatalf("CarsStats error: %v", err)
	}
	if count != 2 || maxAt == nil {
		t.Fatalf("expected (2, non-nil), got (%d, %v)", count, maxAt)
	}
	if maxAt.Before(b.UpdatedAt.Add(-1)) {
		t.Fatalf("maxUpdatedAt %v predates newest car %v", maxAt, b.UpdatedAt)
	}
}

func TestCarStatusCounts(t *testing.T) {
	db := newTestDB(t, false)
	ctx := context.Background()
	a := mustCar(t, db, "ST-A")
	mustCar(t, db, "ST-B")
	if err := UpdateCarStatus(ctx, db, a.ID, domain.CarInRepair); err != nil {
		t.Fatalf("update status: %v", err)
	}

	counts, err := CarStatusCounts(ctx, db)
	if err != nil {
		t.Fatalf("CarStatusCounts error: %v", err)
	}
	if counts[domain.CarWaiting] != 1 || counts[domain.CarInRepair] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestRevenueTotal_OnlyPaid(t *testing.T) {
	db := newTestDB(t, false)
	ctx := context.Background()

	a := mustCar(t, db, "ST-P1")
	b := mustCar(t, db, "ST-P2")
	pa, err := CreatePayment(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("payment a: %v", err)
	}
	if _, err := CreatePayment(ctx, db, b.ID); err != nil {
		t.Fatalf("payment b: %v", err)
	}

	if total, err := RevenueTotal(ctx, db); err != nil || total != 0 {
		t.Fatalf("pending payments must not count: %v err=%v", total, err)
	}

	if err := MarkPaymentPaid(ctx, db, pa.ID, 75.50, time.Now().UTC()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if total, err := RevenueTotal(ctx, db); err != nil || total != 75.50 {
		t.Fatalf("expected 75.50, got %v err=%v", total, err)
	}
}

func TestSeed_IsIdempotent(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	// A second (and third) run must not grow the inventory.
	for i := 0; i < 2; i++ {
		if err := Seed(ctx, db); err != nil {
			t.Fatalf("reseed %d: %v", i, err)
		}
	}

	if n, err := CountSlotsByKind(ctx, db, domain.SlotRepair); err != nil || n != RepairSlotCount {
		t.Fatalf("repair slots = %d err=%v; want %d", n, err, RepairSlotCount)
	}
	if n, err := CountSlotsByKind(ctx, db, domain.SlotWaiting); err != nil || n != WaitingSlotCount {
		t.Fatalf("waiting slots = %d err=%v; want %d", n, err, WaitingSlotCount)
	}

	items, err := ListInterventions(ctx, db)
	if err != nil {
		t.Fatalf("list interventions: %v", err)
	}
	if len(items) != len(DefaultCatalog) {
		t.Fatalf("catalog rows = %d; want %d", len(items), len(DefaultCatalog))
	}

	// Reseeding restores a removed builtin entry.
	if err := DeleteIntervention(ctx, db, items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := Seed(ctx, db); err != nil {
		t.Fatalf("reseed after delete: %v", err)
	}
	items, _ = ListInterventions(ctx, db)
	if len(items) != len(DefaultCatalog) {
		t.Fatalf("catalog rows after delete+reseed = %d; want %d", len(items), len(DefaultCatalog))
	}
}
