package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/enum"
)

// Division represents one payer's share of an order's bill. A division is
// immutable once its invoice has been recorded.
type Division struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	InvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id,omitempty"`

	// Either ItemIDs names the items this payer covers, or Proportional
	// marks it as a share of the whole (or remaining) order.
	ItemIDs      []uuid.UUID `gorm:"type:jsonb;serializer:json" json:"item_ids,omitempty"`
	Proportional bool        `gorm:"default:false" json:"proportional"`

	DiscountPct    decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"discount_pct"`
	TipPct         decimal.Decimal  `gorm:"type:decimal(5,2);default:0" json:"tip_pct"`
	TipEnabled     bool             `gorm:"default:false" json:"tip_enabled"`
	OverrideAmount *decimal.Decimal `gorm:"type:decimal(12,2)" json:"override_amount,omitempty"`

	// Payer identity for the invoice
	PayerName      string `gorm:"size:255" json:"payer_name,omitempty"`
	PayerTaxID     string `gorm:"size:50" json:"payer_tax_id,omitempty"`
	PayerDocType   string `gorm:"size:20" json:"payer_doc_type,omitempty"`
	PayerDocNumber string `gorm:"size:50" json:"payer_doc_number,omitempty"`

	Method        enum.PaymentMethod `gorm:"default:0" json:"method"`
	Denominations DenominationMap    `gorm:"type:jsonb;serializer:json" json:"denominations,omitempty"`
	AccountRef    string             `gorm:"size:255" json:"-"`

	// Computed by the division engine
	BaseAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_amount"`
	TipAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"tip_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new division
func (d *Division) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Division model
func (Division) TableName() string {
	return "divisions"
}
