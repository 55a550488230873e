package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	infraRepo "github.com/gastrolink/mesa-api/internal/infrastructure/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/catalog"
)

// OrderService manages the order lifecycle from creation through kitchen
// progress to the point where the settlement coordinator takes over.
type OrderService struct {
	orderRepo repository.OrderRepository
	itemRepo  repository.OrderItemRepository
	catalog   catalog.Catalog
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.OrderItemRepository,
	catalog catalog.Catalog,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		catalog:   catalog,
	}
}

// OrderItemInput is one requested line on order creation or item addition.
type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	Note      string
}

// CreateOrderInput carries everything needed to open a new order.
type CreateOrderInput struct {
	TableID         *uuid.UUID
	Fulfillment     enum.FulfillmentKind
	DiscountPct     decimal.Decimal
	CustomerName    *string
	CustomerPhone   *string
	DeliveryAddress *string
	Items           []OrderItemInput
}

// UpdateOrderItemInput carries a partial item update.
type UpdateOrderItemInput struct {
	Quantity *int
	Note     *string
}

// CreateOrder opens a new order. Item names and unit prices are resolved
// from the catalog once, here, and frozen onto the items.
func (s *OrderService) CreateOrder(ctx context.Context, waiterID uuid.UUID, input *CreateOrderInput) (*entity.Order, error) {
	establishmentID, ok := infraRepo.GetEstablishmentID(ctx)
	if !ok {
		return nil, apperror.ErrForbidden
	}

	if err := validateDiscount(input.DiscountPct); err != nil {
		return nil, err
	}
	if input.Fulfillment == enum.FulfillmentDelivery && (input.CustomerName == nil || input.DeliveryAddress == nil) {
		return nil, apperror.NewBadRequestError("Delivery orders require a customer name and address")
	}

	order := &entity.Order{
		EstablishmentID: establishmentID,
		TableID:         input.TableID,
		WaiterID:        waiterID,
		Fulfillment:     input.Fulfillment,
		State:           enum.OrderStateOpen,
		DiscountPct:     input.DiscountPct,
		AppliedTotal:    decimal.Zero,
		Version:         1,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		DeliveryAddress: input.DeliveryAddress,
	}

	for _, itemInput := range input.Items {
		item, err := s.resolveItem(ctx, &itemInput)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder retrieves an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders retrieves orders with filtering and pagination
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	return s.orderRepo.List(ctx, params)
}

// ListOrdersWithCursor retrieves orders using cursor-based pagination
func (s *OrderService) ListOrdersWithCursor(ctx context.Context, params *repository.OrderCursorFilterParams) ([]entity.Order, error) {
	return s.orderRepo.ListWithCursor(ctx, params)
}

// AddItem appends a line to an order that still accepts item mutations.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, input *OrderItemInput) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.State.AllowsItemMutation() {
		return nil, apperror.ErrOrderState.WithMessagef("items cannot be added in state %s", order.State)
	}

	item, err := s.resolveItem(ctx, input)
	if err != nil {
		return nil, err
	}
	item.OrderID = order.ID
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	order.Items = append(order.Items, *item)
	return order, nil
}

// UpdateItem changes the quantity or note of an existing line.
func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, input *UpdateOrderItemInput) (*entity.OrderItem, error) {
	order, item, err := s.getOrderItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if !order.State.AllowsItemMutation() {
		return nil, apperror.ErrOrderState.WithMessagef("items cannot be changed in state %s", order.State)
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Quantity must be positive")
		}
		item.Quantity = *input.Quantity
	}
	if input.Note != nil {
		item.Note = *input.Note
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveItem deletes a line from an order that still accepts item mutations.
func (s *OrderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) error {
	order, item, err := s.getOrderItem(ctx, orderID, itemID)
	if err != nil {
		return err
	}
	if !order.State.AllowsItemMutation() {
		return apperror.ErrOrderState.WithMessagef("items cannot be removed in state %s", order.State)
	}
	return s.itemRepo.Delete(ctx, item.ID)
}

// SetItemKitchenState advances one item through the kitchen and derives the
// order state from the aggregate: any item in progress pulls an Open order
// into InPreparation, and the order becomes Ready once every item is.
func (s *OrderService) SetItemKitchenState(ctx context.Context, orderID, itemID uuid.UUID, state enum.KitchenState) (*entity.Order, error) {
	order, item, err := s.getOrderItem(ctx, orderID, itemID)
	if err != nil {
		return nil, err
	}
	if order.State.IsTerminal() || order.State == enum.OrderStateClosed {
		return nil, apperror.ErrOrderState.WithMessagef("kitchen progress is frozen in state %s", order.State)
	}
	if state < item.KitchenState {
		return nil, apperror.ErrOrderState.WithMessagef("kitchen state cannot move backwards")
	}

	item.KitchenState = state
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	for i := range order.Items {
		if order.Items[i].ID == item.ID {
			order.Items[i].KitchenState = state
		}
	}

	derived := order.State
	if state != enum.KitchenStatePending && order.State == enum.OrderStateOpen {
		derived = enum.OrderStateInPreparation
	}
	if order.AllItemsReady() {
		derived = enum.OrderStateReady
	}
	if derived != order.State && order.State.CanTransition(derived) {
		if err := s.orderRepo.UpdateState(ctx, order.ID, derived); err != nil {
			return nil, err
		}
		order.State = derived
	}
	return order, nil
}

// SetDiscount changes the order discount. Forbidden once any invoice has
// been applied, since the net payable would shift under the applied total.
func (s *OrderService) SetDiscount(ctx context.Context, orderID uuid.UUID, pct decimal.Decimal) (*entity.Order, error) {
	if err := validateDiscount(pct); err != nil {
		return nil, err
	}
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.State.IsTerminal() {
		return nil, apperror.ErrOrderState.WithMessagef("order is %s", order.State)
	}
	if order.AppliedTotal.Sign() > 0 {
		return nil, apperror.ErrOrderState.WithMessagef("discount cannot change after invoices were applied")
	}

	order.DiscountPct = pct
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CloseOrder moves the order to Closed, the state from which payment runs.
// Requires every item to have left the kitchen.
func (s *OrderService) CloseOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.State.CanTransition(enum.OrderStateClosed) {
		return nil, apperror.ErrOrderState.WithMessagef("order cannot close from state %s", order.State)
	}
	if !order.AllItemsReady() {
		return nil, apperror.ErrOrderState.WithMessagef("order cannot close while the kitchen is still working")
	}

	now := time.Now()
	order.State = enum.OrderStateClosed
	order.ClosedAt = &now
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder voids the order. Allowed from any non-terminal state, but
// never after money has been applied; those orders must be paid out or
// corrected through invoicing.
func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.State.CanTransition(enum.OrderStateCancelled) {
		return nil, apperror.ErrOrderState.WithMessagef("order cannot cancel from state %s", order.State)
	}
	if order.AppliedTotal.Sign() > 0 {
		return nil, apperror.ErrOrderState.WithMessagef("order has applied invoices and cannot be cancelled")
	}

	order.State = enum.OrderStateCancelled
	if err := s.orderRepo.UpdateWithVersion(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) resolveItem(ctx context.Context, input *OrderItemInput) (*entity.OrderItem, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewBadRequestError("Quantity must be positive")
	}
	product, err := s.catalog.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, apperror.NewAppError(502, "Catalog lookup failed: "+err.Error())
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return &entity.OrderItem{
		ProductID:    product.ID,
		Name:         product.Name,
		Quantity:     input.Quantity,
		UnitPrice:    product.Price,
		Note:         input.Note,
		KitchenState: enum.KitchenStatePending,
	}, nil
}

func (s *OrderService) getOrderItem(ctx context.Context, orderID, itemID uuid.UUID) (*entity.Order, *entity.OrderItem, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	for i := range order.Items {
		if order.Items[i].ID == itemID {
			return order, &order.Items[i], nil
		}
	}
	return nil, nil, apperror.NewNotFoundError("Order item")
}

func validateDiscount(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return apperror.NewBadRequestError("Discount must be between 0 and 100")
	}
	return nil
}
