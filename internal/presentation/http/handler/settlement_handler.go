package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gastrolink/mesa-api/internal/application/service"
	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/request"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/response"
)

// SettlementHandler handles order settlement HTTP requests
type SettlementHandler struct {
	settlementService *service.SettlementService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(settlementService *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// Settle handles settling an order against a division set
func (h *SettlementHandler) Settle(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.SettleOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	inputs := make([]service.SettleDivisionInput, len(req.Divisions))
	for i, div := range req.Divisions {
		inputs[i] = service.SettleDivisionInput{
			Spec: service.DivisionSpec{
				ItemIDs:        div.ItemIDs,
				Proportional:   div.Proportional,
				TipPct:         div.TipPct,
				TipEnabled:     div.TipEnabled,
				OverrideAmount: div.OverrideAmount,
			},
			PayerName:      div.PayerName,
			PayerTaxID:     div.PayerTaxID,
			PayerDocType:   div.PayerDocType,
			PayerDocNumber: div.PayerDocNumber,
			Method:         enum.PaymentMethod(div.Method),
			Denominations:  entity.DenominationMap(div.Denominations),
			AccountRef:     div.AccountRef,
			Taxes:          div.Taxes,
		}
	}

	result, err := h.settlementService.SettleOrder(c.Request.Context(), *userID, orderID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order settled successfully", gin.H{
		"order":     result.Order,
		"divisions": result.Divisions,
		"invoices":  result.Invoices,
	})
}
