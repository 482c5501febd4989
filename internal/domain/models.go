// Package domain defines the persistence models for the garage: clients,
// cars, repairs, the intervention catalog, payments, and the physical slots.
// These types are mapped with GORM and form the core data layer of the
// application.
package domain

import (
	"fmt"
	"time"
)

// Client represents a car owner. Credential storage is handled by an external
// identity service; only contact data lives here.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - FirstName / LastName: owner name.
//   - Phone: contact number.
//   - Email: unique contact address.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Client struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	FirstName string    `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName  string    `json:"last_name"  gorm:"type:varchar(100);not null"`
	Phone     string    `json:"phone"      gorm:"type:varchar(32)"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_client_email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Client.
func (Client) TableName() string { return "clients" }

// Car represents a vehicle deposited at the garage. Each car belongs to one
// client, owns a collection of repairs (1:N), and has exactly one payment
// record created alongside it.
//
// Status is derived from the repairs and payment states (see DeriveCarStatus)
// and must never be hand-set outside the administrative override path.
type Car struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	ClientID  string    `json:"client_id" gorm:"type:char(36);not null;index:idx_client_cars"`
	Brand     string    `json:"brand"     gorm:"type:varchar(100);not null"`
	Model     string    `json:"model"     gorm:"type:varchar(100);not null"`
	Plate     string    `json:"plate"     gorm:"type:varchar(50);not null;uniqueIndex:ux_car_plate"`
	Status    CarStatus `json:"status"    gorm:"type:varchar(16);not null;check:status IN ('waiting','in_repair','repaired','paid')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Client is the owning client. Cars are cascade-deleted if the client
	// row is removed (client deletion is blocked at the service layer while
	// cars exist, so the constraint is a safety net).
	Client *Client `json:"client,omitempty" gorm:"foreignKey:ClientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// Repairs and Payment are loaded on demand for detail views.
	Repairs []Repair `json:"repairs,omitempty" gorm:"foreignKey:CarID"`
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:CarID"`
}

// TableName returns the database table name for Car.
func (Car) TableName() string { return "cars" }

// Repair is one unit of work (one intervention type) applied to one car.
//
// Invariants:
//   - StartedAt is set iff state ∈ {in_progress, done}.
//   - EndedAt is set iff state = done.
type Repair struct {
	ID                 string      `json:"id"                   gorm:"type:char(36);primaryKey"`
	CarID              string      `json:"car_id"               gorm:"type:char(36);not null;index:idx_car_repairs"`
	InterventionTypeID uint        `json:"intervention_type_id" gorm:"not null;index:idx_type_repairs"`
	State              RepairState `json:"state"                gorm:"type:varchar(16);not null;check:state IN ('pending','in_progress','done')"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	EndedAt            *time.Time  `json:"ended_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`

	// Car is the parent vehicle. Repairs are cascade-deleted with their car.
	Car *Car `json:"-" gorm:"foreignKey:CarID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	// InterventionType carries the price/duration for this repair. Catalog
	// entries are immutable while referenced, so the restrict constraint
	// backs up the service-layer guard.
	InterventionType *InterventionType `json:"intervention_type,omitempty" gorm:"foreignKey:InterventionTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Repair.
func (Repair) TableName() string { return "repairs" }

// InterventionType is a catalog entry describing a kind of repair with a
// fixed price and duration. Entries are immutable once referenced by a
// repair.
type InterventionType struct {
	ID              uint      `json:"id"               gorm:"primaryKey;autoIncrement"`
	Name            string    `json:"name"             gorm:"type:varchar(100);not null;uniqueIndex:ux_intervention_name"`
	Price           float64   `json:"price"            gorm:"not null"`
	DurationSeconds int       `json:"duration_seconds" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName returns the database table name for InterventionType.
func (InterventionType) TableName() string { return "intervention_types" }

// DurationLabel renders the duration as a compact human string, e.g.
// "1h 30min" or "45min".
func (it InterventionType) DurationLabel() string {
	hours := it.DurationSeconds / 3600
	minutes := (it.DurationSeconds % 3600) / 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dmin", minutes)
	}
}

// Payment is the single bill attached to a car (1:1, unique foreign key).
// It is created with amount 0 when the car is created; the amount is only
// fixed at payment time, from the sum of the car's repair prices.
type Payment struct {
	ID        string        `json:"id"      gorm:"type:char(36);primaryKey"`
	CarID     string        `json:"car_id"  gorm:"type:char(36);not null;uniqueIndex:ux_payment_car"`
	Amount    float64       `json:"amount"  gorm:"not null;default:0"`
	Status    PaymentStatus `json:"status"  gorm:"type:varchar(16);not null;check:status IN ('pending','paid')"`
	PaidAt    *time.Time    `json:"paid_at,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Car is the billed vehicle. The payment row is cascade-deleted with it.
	Car *Car `json:"-" gorm:"foreignKey:CarID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Payment.
func (Payment) TableName() string { return "payments" }

// Slot is one of the fixed physical positions a car can occupy while active:
// two repair bays and one waiting bay, seeded at startup and never grown.
//
// Invariant: CarID is set iff Occupied is true, and a car occupies at most
// one slot system-wide. The slot does not own the car; deleting the car
// clears the reference.
type Slot struct {
	ID       uint     `json:"id"       gorm:"primaryKey;autoIncrement"`
	Kind     SlotKind `json:"kind"     gorm:"type:varchar(16);not null;check:kind IN ('repair','waiting')"`
	Occupied bool     `json:"occupied" gorm:"not null;default:false"`
	CarID    *string  `json:"car_id,omitempty" gorm:"type:char(36);index:idx_slot_car"`

	// Car is the current occupant, when any.
	Car *Car `json:"car,omitempty" gorm:"foreignKey:CarID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Slot.
func (Slot) TableName() string { return "slots" }
