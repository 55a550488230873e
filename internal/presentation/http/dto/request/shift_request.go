package request

import (
	"github.com/shopspring/decimal"
)

// OpenShiftRequest opens a cash drawer session with a counted float
type OpenShiftRequest struct {
	Denominations map[string]int `json:"denominations" binding:"required"`
	Notes         string         `json:"notes"`
}

// CloseShiftRequest counts the drawer down and closes the session
type CloseShiftRequest struct {
	Denominations map[string]int `json:"denominations" binding:"required"`
	Notes         string         `json:"notes"`
}

// ExpenseRequest books a cash outflow against the open shift
type ExpenseRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description" binding:"required"`
}
