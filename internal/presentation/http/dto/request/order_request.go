package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest represents one requested order line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	Note      string    `json:"note"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	TableID         *uuid.UUID         `json:"table_id"`
	Fulfillment     int                `json:"fulfillment"`
	DiscountPct     decimal.Decimal    `json:"discount_pct"`
	CustomerName    *string            `json:"customer_name"`
	CustomerPhone   *string            `json:"customer_phone"`
	DeliveryAddress *string            `json:"delivery_address"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderItemRequest represents a partial item update
type UpdateOrderItemRequest struct {
	Quantity *int    `json:"quantity"`
	Note     *string `json:"note"`
}

// KitchenStateRequest advances one item through the kitchen
type KitchenStateRequest struct {
	KitchenState int `json:"kitchen_state" binding:"min=0,max=2"`
}

// DiscountRequest changes the order discount percentage
type DiscountRequest struct {
	DiscountPct decimal.Decimal `json:"discount_pct"`
}
