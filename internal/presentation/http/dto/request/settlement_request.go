package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DivisionRequest is one payer's share of the bill and how they pay it.
// Exactly one of item_ids, proportional or override_amount applies.
type DivisionRequest struct {
	ItemIDs        []uuid.UUID      `json:"item_ids"`
	Proportional   bool             `json:"proportional"`
	TipPct         decimal.Decimal  `json:"tip_pct"`
	TipEnabled     bool             `json:"tip_enabled"`
	OverrideAmount *decimal.Decimal `json:"override_amount"`

	PayerName      string `json:"payer_name"`
	PayerTaxID     string `json:"payer_tax_id"`
	PayerDocType   string `json:"payer_doc_type"`
	PayerDocNumber string `json:"payer_doc_number"`

	Method        int             `json:"method"`
	Denominations map[string]int  `json:"denominations"`
	AccountRef    string          `json:"account_ref"`
	Taxes         decimal.Decimal `json:"taxes"`
}

// SettleOrderRequest settles an order against a division set
type SettleOrderRequest struct {
	Divisions []DivisionRequest `json:"divisions" binding:"required,min=1,dive"`
}
