package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gastrolink/mesa-api/internal/application/service"
	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/request"
	"github.com/gastrolink/mesa-api/internal/presentation/http/dto/response"
	"github.com/gastrolink/mesa-api/pkg/pagination"
)

// ShiftHandler handles cash shift HTTP requests
type ShiftHandler struct {
	shiftService *service.CashShiftService
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *service.CashShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// Open handles opening a cash shift
func (h *ShiftHandler) Open(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	shift, err := h.shiftService.OpenShift(c.Request.Context(), *userID, entity.DenominationMap(req.Denominations), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Shift opened successfully", shift)
}

// Close handles counting down and closing a cash shift
func (h *ShiftHandler) Close(c *gin.Context) {
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	var req request.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	shift, err := h.shiftService.CloseShift(c.Request.Context(), shiftID, entity.DenominationMap(req.Denominations), req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift closed successfully", shift)
}

// GetCurrent returns the caller's open shift
func (h *ShiftHandler) GetCurrent(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	shift, err := h.shiftService.GetOpenShift(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift retrieved successfully", shift)
}

// Get handles retrieving a single shift with its movements
func (h *ShiftHandler) Get(c *gin.Context) {
	shiftID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid shift ID")
		return
	}

	shift, err := h.shiftService.GetShift(c.Request.Context(), shiftID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Shift retrieved successfully", shift)
}

// List handles listing shifts with filtering and pagination
func (h *ShiftHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.ShiftFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
	}

	if cashierIDStr := c.Query("cashier_id"); cashierIDStr != "" {
		if cashierID, err := uuid.Parse(cashierIDStr); err == nil {
			params.CashierID = &cashierID
		}
	}

	if stateStr := c.Query("state"); stateStr != "" {
		if stateInt, err := strconv.Atoi(stateStr); err == nil {
			state := enum.ShiftState(stateInt)
			params.State = &state
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			params.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			params.EndDate = &endDate
		}
	}

	shifts, total, err := h.shiftService.ListShifts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(shifts, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Shifts retrieved successfully", result)
}

// RecordExpense handles booking a cash outflow against the caller's open shift
func (h *ShiftHandler) RecordExpense(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	movement, err := h.shiftService.RecordExpense(c.Request.Context(), *userID, req.Amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Expense recorded successfully", movement)
}
