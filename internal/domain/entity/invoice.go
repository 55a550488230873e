package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/enum"
)

// Invoice is a billing document, full or partial, applied against one or
// more orders.
type Invoice struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"establishment_id"`
	CashierID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"cashier_id"`
	ShiftID         *uuid.UUID       `gorm:"type:uuid;index" json:"shift_id,omitempty"`
	InvoiceNo       string           `gorm:"size:100;unique;not null" json:"invoice_no"`
	Kind            enum.InvoiceKind `gorm:"default:0" json:"kind"`

	PayerName  string `gorm:"size:255" json:"payer_name,omitempty"`
	PayerTaxID string `gorm:"size:50" json:"payer_tax_id,omitempty"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Taxes     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"taxes"`
	Discounts decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"discounts"`
	Tip       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tip"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`

	// External document submission. Failures are recorded here and retried
	// out of band; they never unwind the invoice itself.
	SubmissionState enum.SubmissionState `gorm:"default:0;index" json:"submission_state"`
	DocumentRef     *string              `gorm:"size:255" json:"document_ref,omitempty"`
	RetryCount      int                  `gorm:"not null;default:0" json:"retry_count"`
	LastError       *string              `gorm:"type:text" json:"last_error,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Applications []InvoiceApplication `gorm:"foreignKey:InvoiceID" json:"applications,omitempty"`
}

// AppliedTo returns the amount this invoice applies to the given order.
func (i *Invoice) AppliedTo(orderID uuid.UUID) decimal.Decimal {
	for idx := range i.Applications {
		if i.Applications[idx].OrderID == orderID {
			return i.Applications[idx].AmountApplied
		}
	}
	return decimal.Zero
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceApplication links an invoice to one order with the amount it
// settles on that order.
type InvoiceApplication struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_applied"`
	CreatedAt     time.Time       `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new invoice application
func (a *InvoiceApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceApplication model
func (InvoiceApplication) TableName() string {
	return "invoice_applications"
}
