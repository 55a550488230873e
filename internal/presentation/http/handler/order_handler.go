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

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List handles listing orders (supports both page-based and cursor-based pagination)
func (h *OrderHandler) List(c *gin.Context) {
	if cursor := c.Query("cursor"); cursor != "" || c.Query("limit") != "" {
		h.listWithCursor(c)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	params := &repository.OrderFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if stateStr := c.Query("state"); stateStr != "" {
		if stateInt, err := strconv.Atoi(stateStr); err == nil {
			state := enum.OrderState(stateInt)
			params.State = &state
		}
	}

	if fulfillmentStr := c.Query("fulfillment"); fulfillmentStr != "" {
		if fulfillmentInt, err := strconv.Atoi(fulfillmentStr); err == nil {
			fulfillment := enum.FulfillmentKind(fulfillmentInt)
			params.Fulfillment = &fulfillment
		}
	}

	if tableIDStr := c.Query("table_id"); tableIDStr != "" {
		if tableID, err := uuid.Parse(tableIDStr); err == nil {
			params.TableID = &tableID
		}
	}

	if waiterIDStr := c.Query("waiter_id"); waiterIDStr != "" {
		if waiterID, err := uuid.Parse(waiterIDStr); err == nil {
			params.WaiterID = &waiterID
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

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	result := pagination.NewPaginatedResult(orders, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))
	response.SuccessWithPagination(c, 200, "Orders retrieved successfully", result)
}

// listWithCursor handles listing orders with cursor-based pagination
func (h *OrderHandler) listWithCursor(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))

	params := &repository.OrderCursorFilterParams{
		Cursor: &pagination.CursorParams{
			Cursor:    c.Query("cursor"),
			Direction: pagination.CursorDirection(c.DefaultQuery("direction", "next")),
			Limit:     limit,
		},
	}

	if stateStr := c.Query("state"); stateStr != "" {
		if stateInt, err := strconv.Atoi(stateStr); err == nil {
			state := enum.OrderState(stateInt)
			params.State = &state
		}
	}

	if waiterIDStr := c.Query("waiter_id"); waiterIDStr != "" {
		if waiterID, err := uuid.Parse(waiterIDStr); err == nil {
			params.WaiterID = &waiterID
		}
	}

	orders, err := h.orderService.ListOrdersWithCursor(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	params.Cursor.Validate()
	cursorPagination, orders := pagination.NewCursorPagination(orders, params.Cursor.Limit,
		func(o entity.Order) string { return o.ID.String() },
		func(o entity.Order) time.Time { return o.CreatedAt },
	)
	cursorPagination.HasPrev = params.Cursor.Cursor != ""

	response.OK(c, "Orders retrieved successfully", pagination.NewCursorPaginatedResult(orders, cursorPagination))
}

// Create handles creating an order
func (h *OrderHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Note:      item.Note,
		}
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), *userID, &service.CreateOrderInput{
		TableID:         req.TableID,
		Fulfillment:     enum.FulfillmentKind(req.Fulfillment),
		DiscountPct:     req.DiscountPct,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		Items:           items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles retrieving a single order
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// AddItem handles appending a line to an order
func (h *OrderHandler) AddItem(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.OrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), orderID, &service.OrderItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Note:      req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added successfully", order)
}

// UpdateItem handles changing an order line
func (h *OrderHandler) UpdateItem(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req request.UpdateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.orderService.UpdateItem(c.Request.Context(), orderID, itemID, &service.UpdateOrderItemInput{
		Quantity: req.Quantity,
		Note:     req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", item)
}

// RemoveItem handles deleting an order line
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.orderService.RemoveItem(c.Request.Context(), orderID, itemID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetItemKitchenState handles advancing an item through the kitchen
func (h *OrderHandler) SetItemKitchenState(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req request.KitchenStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.SetItemKitchenState(c.Request.Context(), orderID, itemID, enum.KitchenState(req.KitchenState))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Kitchen state updated successfully", order)
}

// SetDiscount handles changing the order discount
func (h *OrderHandler) SetDiscount(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req request.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.SetDiscount(c.Request.Context(), orderID, req.DiscountPct)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount updated successfully", order)
}

// Close handles closing an order for payment
func (h *OrderHandler) Close(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.CloseOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order closed successfully", order)
}

// Cancel handles voiding an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}
