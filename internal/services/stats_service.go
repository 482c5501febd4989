// Dashboard statistics.
//
// Read-only aggregates over the whole garage: car and repair population per
// status, realized revenue, and the slot occupancy picture. Everything is
// recomputed from the store on each call; the HTTP layer may cache the
// rendered response.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/repo"
)

// DashboardReport is the aggregate projection for the operator dashboard.
type DashboardReport struct {
	Cars    map[domain.CarStatus]int64   `json:"cars"`
	Repairs map[domain.RepairState]int64 `json:"repairs"`
	Revenue float64                      `json:"revenue"`
	Slots   OccupancyReport              `json:"slots"`
}

// StatsService computes read-only aggregates for reporting endpoints.
type StatsService struct {
	DB    *gorm.DB
	Slots *SlotService
}

// Dashboard returns the full aggregate picture of the garage. Absent statuses
// are reported as zero so consumers always see the complete vocabulary.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardReport, error) {
	cars, err := repo.CarStatusCounts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	for _, st := range []domain.CarStatus{domain.CarWaiting, domain.CarInRepair, domain.CarRepaired, domain.CarPaid} {
		if _, present := cars[st]; !present {
			cars[st] = 0
		}
	}

	repairs, err := repo.RepairStateCounts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	for _, st := range []domain.RepairState{domain.RepairPending, domain.RepairInProgress, domain.RepairDone} {
		if _, present := repairs[st]; !present {
			repairs[st] = 0
		}
	}

	revenue, err := repo.RevenueTotal(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	occupancy, err := s.Slots.Report(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardReport{
		Cars:    cars,
		Repairs: repairs,
		Revenue: revenue,
		Slots:   *occupancy,
	}, nil
}
