package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/enum"
)

// ErrBadDenomination reports a denomination map that cannot be totalled.
var ErrBadDenomination = errors.New("invalid denomination map")

// DenominationMap counts physical bills/coins by face value, keyed by the
// face value as a decimal string (e.g. "20", "0.25").
type DenominationMap map[string]int

// Total returns the weighted sum of the counted denominations. Counts must
// be non-negative and face values must parse as positive decimals.
func (m DenominationMap) Total() (decimal.Decimal, error) {
	total := decimal.Zero
	for face, count := range m {
		if count < 0 {
			return decimal.Zero, ErrBadDenomination
		}
		value, err := decimal.NewFromString(face)
		if err != nil || value.Sign() <= 0 {
			return decimal.Zero, ErrBadDenomination
		}
		total = total.Add(value.Mul(decimal.NewFromInt(int64(count))))
	}
	return total, nil
}

// CashShift represents one cashier's open-to-close cash drawer session.
// At most one shift is open per (establishment, cashier) pair; the ledger
// totals are append-only while the shift is open and frozen at close.
type CashShift struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID       `gorm:"type:uuid;not null;index:idx_shift_open,priority:1" json:"establishment_id"`
	CashierID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_shift_open,priority:2" json:"cashier_id"`
	State           enum.ShiftState `gorm:"default:0;index:idx_shift_open,priority:3" json:"state"`

	OpenedAt             time.Time       `gorm:"not null" json:"opened_at"`
	OpeningDenominations DenominationMap `gorm:"type:jsonb;serializer:json" json:"opening_denominations"`
	OpeningBalance       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"opening_balance"`

	// Running totals, monotonically updated while the shift is open.
	CashSales       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cash_sales"`
	ElectronicSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"electronic_sales"`
	Expenses        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"expenses"`
	GrossSales      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"gross_sales"`
	Discounts       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discounts"`
	Tips            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tips"`
	NetSales        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"net_sales"`

	// Set exactly once, at close.
	ClosedAt             *time.Time       `json:"closed_at,omitempty"`
	ClosingDenominations DenominationMap  `gorm:"type:jsonb;serializer:json" json:"closing_denominations,omitempty"`
	CountedBalance       *decimal.Decimal `gorm:"type:decimal(12,2)" json:"counted_balance,omitempty"`
	ExpectedBalance      *decimal.Decimal `gorm:"type:decimal(12,2)" json:"expected_balance,omitempty"`
	Variance             *decimal.Decimal `gorm:"type:decimal(12,2)" json:"variance,omitempty"`

	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Movements []CashMovement `gorm:"foreignKey:ShiftID" json:"movements,omitempty"`
}

// IsOpen reports whether the shift still accepts bookings.
func (s *CashShift) IsOpen() bool {
	return s.State == enum.ShiftStateOpen
}

// BeforeCreate generates a UUID before creating a new cash shift
func (s *CashShift) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashShift model
func (CashShift) TableName() string {
	return "cash_shifts"
}

// ShiftTotals carries the deltas of one booking against the running
// totals. Totals only ever grow while the shift is open.
type ShiftTotals struct {
	CashSales       decimal.Decimal
	ElectronicSales decimal.Decimal
	Expenses        decimal.Decimal
	GrossSales      decimal.Decimal
	Discounts       decimal.Decimal
	Tips            decimal.Decimal
	NetSales        decimal.Decimal
}

// CashMovement is an immutable row in the shift ledger. Movements are
// never modified or deleted.
type CashMovement struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	ShiftID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"shift_id"`
	Kind        string              `gorm:"size:20;not null" json:"kind"` // sale, expense
	Method      *enum.PaymentMethod `json:"method,omitempty"`
	Amount      decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string              `gorm:"size:255" json:"description,omitempty"`
	ReferenceID *uuid.UUID          `gorm:"type:uuid" json:"reference_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Movement kinds
const (
	MovementKindSale    = "sale"
	MovementKindExpense = "expense"
)

// BeforeCreate generates a UUID before creating a new cash movement
func (m *CashMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CashMovement model
func (CashMovement) TableName() string {
	return "cash_movements"
}
