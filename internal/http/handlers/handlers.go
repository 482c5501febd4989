// Handler wiring and shared DTO helpers.
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results (including sentinel errors) into HTTP responses. The
// service dependencies are expressed as interfaces so transport concerns stay
// separate from business logic.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-garage-backend/internal/domain"
	"github.com/tbourn/go-garage-backend/internal/services"
	"github.com/tbourn/go-garage-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// ClientService defines client roster operations consumed by HTTP handlers.
type ClientService interface {
	Create(ctx context.Context, firstName, lastName, phone, email string) (*domain.Client, error)
	Get(ctx context.Context, clientID string) (*domain.Client, error)
	List(ctx context.Context, offset, limit int) ([]domain.Client, int64, error)
	Cars(ctx context.Context, clientID string) ([]domain.Car, error)
	Update(ctx context.Context, clientID, firstName, lastName, phone, email string) (*domain.Client, error)
	Delete(ctx context.Context, clientID string) error
}

// CarService defines car lifecycle operations consumed by HTTP handlers.
type CarService interface {
	Create(ctx context.Context, clientID, brand, model, plate string) (*domain.Car, error)
	Get(ctx context.Context, carID string) (*domain.Car, error)
	List(ctx context.Context, status string, offset, limit int) ([]domain.Car, int64, error)
	Update(ctx context.Context, carID, brand, model, plate string) (*domain.Car, error)
	OverrideStatus(ctx context.Context, carID, status string) (*domain.Car, error)
	Delete(ctx context.Context, carID string) error
}

// RepairService defines the repair workflow operations consumed by handlers.
type RepairService interface {
	Create(ctx context.Context, carID string, typeID uint) (*domain.Repair, error)
	Get(ctx context.Context, repairID string) (*domain.Repair, error)
	List(ctx context.Context, state string) ([]domain.Repair, error)
	ListByCar(ctx context.Context, carID string) ([]domain.Repair, error)
	Start(ctx context.Context, repairID string) (*domain.Repair, error)
	Finish(ctx context.Context, repairID string) (*domain.Repair, error)
	Delete(ctx context.Context, repairID string) error
}

// SlotService defines slot inventory operations consumed by handlers.
type SlotService interface {
	List(ctx context.Context) ([]domain.Slot, error)
	Get(ctx context.Context, slotID uint) (*domain.Slot, error)
	Report(ctx context.Context) (*services.OccupancyReport, error)
	Occupy(ctx context.Context, slotID uint, carID string) (*domain.Slot, error)
	ReleaseManual(ctx context.Context, slotID uint) (*domain.Slot, error)
}

// BillingService defines quoting and payment operations consumed by handlers.
type BillingService interface {
	Quote(ctx context.Context, carID string) (*services.Quote, error)
	Pay(ctx context.Context, carID string) (*domain.Payment, error)
	Payment(ctx context.Context, carID string) (*domain.Payment, error)
}

// CatalogService defines intervention catalog operations consumed by handlers.
type CatalogService interface {
	List(ctx context.Context) ([]domain.InterventionType, error)
	Get(ctx context.Context, id uint) (*domain.InterventionType, error)
	FindOrCreate(ctx context.Context, name string) (*domain.InterventionType, error)
	Create(ctx context.Context, name string, price float64, durationSeconds int) (*domain.InterventionType, error)
	Update(ctx context.Context, id uint, price *float64, durationSeconds *int) (*domain.InterventionType, error)
	Delete(ctx context.Context, id uint) error
}

// StatsService defines the reporting aggregates consumed by handlers.
type StatsService interface {
	Dashboard(ctx context.Context) (*services.DashboardReport, error)
}

// Handlers groups the HTTP endpoints of the garage API.
type Handlers struct {
	clientSvc  ClientService
	carSvc     CarService
	repairSvc  RepairService
	slotSvc    SlotService
	billingSvc BillingService
	catalogSvc CatalogService
	statsSvc   StatsService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(clientSvc ClientService, carSvc CarService, repairSvc RepairService, slotSvc SlotService, billingSvc BillingService, catalogSvc CatalogService, statsSvc StatsService) *Handlers {
	return &Handlers{
		clientSvc:  clientSvc,
		carSvc:     carSvc,
		repairSvc:  repairSvc,
		slotSvc:    slotSvc,
		billingSvc: billingSvc,
		catalogSvc: catalogSvc,
		statsSvc:   statsSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, isStr := v.(string); isStr && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// Shared DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginationFor derives the metadata block from page parameters and a total.
func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// failFromErr maps service sentinel errors to HTTP responses. Unmapped errors
// fall through to a 500 with a generic code.
func failFromErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrClientNotFound),
		errors.Is(err, services.ErrCarNotFound),
		errors.Is(err, services.ErrRepairNotFound),
		errors.Is(err, services.ErrSlotNotFound),
		errors.Is(err, services.ErrInterventionNotFound),
		errors.Is(err, services.ErrPaymentNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())

	case errors.Is(err, services.ErrNoSlotAvailable):
		fail(c, http.StatusConflict, ErrCodeNoSlotAvailable, "both repair slots are occupied")
	case errors.Is(err, services.ErrSlotOccupied),
		errors.Is(err, services.ErrSlotAlreadyBound):
		fail(c, http.StatusConflict, ErrCodeSlotOccupied, err.Error())
	case errors.Is(err, services.ErrSlotAlreadyFree):
		fail(c, http.StatusConflict, ErrCodeSlotAlreadyFree, err.Error())

	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, services.ErrCannotDeleteActive),
		errors.Is(err, services.ErrCarClosed):
		fail(c, http.StatusConflict, ErrCodeCarClosed, err.Error())
	case errors.Is(err, services.ErrCarNotReady):
		fail(c, http.StatusConflict, ErrCodeCarNotReady, err.Error())
	case errors.Is(err, services.ErrAlreadyPaid):
		fail(c, http.StatusConflict, ErrCodeAlreadyPaid, err.Error())

	case errors.Is(err, services.ErrInterventionInUse),
		errors.Is(err, services.ErrClientHasCars):
		fail(c, http.StatusConflict, ErrCodeInUse, err.Error())
	case errors.Is(err, services.ErrInterventionExists),
		errors.Is(err, services.ErrPlateTaken),
		errors.Is(err, services.ErrEmailTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())

	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
