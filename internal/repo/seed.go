// Package repo – seeding.
//
// The garage has a fixed physical layout (2 repair bays, 1 waiting bay) and a
// fixed intervention catalog. Seeding is idempotent: it creates only what is
// missing and never grows the slot inventory beyond the hard capacity.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
)

// Slot inventory. These are capacity ceilings, not tunables: the business
// rule is at most 2 cars in active repair and at most 1 car waiting.
const (
	RepairSlotCount  = 2
	WaitingSlotCount = 1
)

// DefaultCatalog is the fixed set of intervention types the garage offers.
// Order matters: listAvailable reports entries in insertion order.
var DefaultCatalog = []domain.InterventionType{
	{Name: "Brake", Price: 120.00, DurationSeconds: 3600},
	{Name: "Oil Change", Price: 60.00, DurationSeconds: 1800},
	{Name: "Filter", Price: 25.00, DurationSeconds: 900},
	{Name: "Battery", Price: 150.00, DurationSeconds: 2700},
	{Name: "Shocks", Price: 200.00, DurationSeconds: 5400},
	{Name: "Clutch", Price: 350.00, DurationSeconds: 7200},
	{Name: "Tires", Price: 320.00, DurationSeconds: 3600},
	{Name: "Cooling System", Price: 180.00, DurationSeconds: 4500},
}

// DefaultCatalogEntry returns the builtin price/duration triple for a known
// catalog name, or false when the name is not part of the fixed offering.
func DefaultCatalogEntry(name string) (domain.InterventionType, bool) {
	for _, it := range DefaultCatalog {
		if it.Name == name {
			return it, true
		}
	}
	return domain.InterventionType{}, false
}

// Seed ensures the slot inventory and intervention catalog exist. Safe to run
// on every startup.
func Seed(ctx context.Context, db *gorm.DB) error {
	if err := seedSlots(ctx, db); err != nil {
		return err
	}
	return seedCatalog(ctx, db)
}

// seedSlots tops the slot table up to exactly 2 repair + 1 waiting rows.
func seedSlots(ctx context.Context, db *gorm.DB) error {
	for kind, want := range map[domain.SlotKind]int64{
		domain.SlotRepair:  RepairSlotCount,
		domain.SlotWaiting: WaitingSlotCount,
	} {
		var have int64
		if err := db.WithContext(ctx).
			Model(&domain.Slot{}).
			Where("kind = ?", kind).
			Count(&have).Error; err != nil {
			return err
		}
		for ; have < want; have++ {
			if err := db.WithContext(ctx).Create(&domain.Slot{Kind: kind}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// seedCatalog inserts any missing default intervention types, preserving the
// catalog order for rows it creates.
func seedCatalog(ctx context.Context, db *gorm.DB) error {
	for _, it := range DefaultCatalog {
		var have int64
		if err := db.WithContext(ctx).
			Model(&domain.InterventionType{}).
			Where("name = ?", it.Name).
			Count(&have).Error; err != nil {
			return err
		}
		if have > 0 {
			continue
		}
		row := it // fresh copy, ID assigned by the DB
		if err := db.WithContext(ctx).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
