package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/pkg/money"
)

// Order represents one dine-in, takeaway or delivery ticket
type Order struct {
	ID              uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	EstablishmentID uuid.UUID            `gorm:"type:uuid;not null;index" json:"establishment_id"`
	TableID         *uuid.UUID           `gorm:"type:uuid;index" json:"table_id,omitempty"`
	WaiterID        uuid.UUID            `gorm:"type:uuid;not null;index" json:"waiter_id"`
	Fulfillment     enum.FulfillmentKind `gorm:"default:0" json:"fulfillment"`
	State           enum.OrderState      `gorm:"default:0;index" json:"state"`
	DiscountPct     decimal.Decimal      `gorm:"type:decimal(5,2);default:0" json:"discount_pct"`

	// Delivery contact, only meaningful for FulfillmentDelivery
	CustomerName    *string `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone   *string `gorm:"size:50" json:"customer_phone,omitempty"`
	DeliveryAddress *string `gorm:"type:text" json:"delivery_address,omitempty"`

	// AppliedTotal is the running sum of invoice amounts applied to this
	// order. It never exceeds the net payable.
	AppliedTotal decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"applied_total"`

	// Version backs the optimistic compare-and-swap on settlement writes.
	Version int `gorm:"not null;default:1" json:"-"`

	ClosedAt  *time.Time     `json:"closed_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// GrossSubtotal recomputes sum(qty * unit_price) from the current items.
// It is never cached; item mutations always flow through here.
func (o *Order) GrossSubtotal() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal())
	}
	return total
}

// NetPayable is the gross subtotal after the order discount, rounded to
// two decimal places.
func (o *Order) NetPayable() decimal.Decimal {
	return money.Round(money.ApplyDiscount(o.GrossSubtotal(), o.DiscountPct))
}

// RemainingPayable is what is still uncovered by applied invoices.
func (o *Order) RemainingPayable() decimal.Decimal {
	remaining := o.NetPayable().Sub(o.AppliedTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// AllItemsReady reports whether every item has reached the terminal
// kitchen state. An order without items is never ready.
func (o *Order) AllItemsReady() bool {
	if len(o.Items) == 0 {
		return false
	}
	for i := range o.Items {
		if o.Items[i].KitchenState != enum.KitchenStateReady {
			return false
		}
	}
	return true
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents one line of an order. The unit price is captured
// from the catalog at add time and never re-read afterwards.
type OrderItem struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	OrderID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Name         string            `gorm:"size:255;not null" json:"name"`
	Quantity     int               `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Note         string            `gorm:"type:text" json:"note,omitempty"`
	KitchenState enum.KitchenState `gorm:"default:0" json:"kitchen_state"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

// LineTotal returns qty * unit_price for this item.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// BeforeCreate generates a UUID before creating a new order item
func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
