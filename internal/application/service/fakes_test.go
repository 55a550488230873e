package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gastrolink/mesa-api/internal/domain/entity"
	"github.com/gastrolink/mesa-api/internal/domain/enum"
	"github.com/gastrolink/mesa-api/internal/domain/repository"
	"github.com/gastrolink/mesa-api/pkg/apperror"
	"github.com/gastrolink/mesa-api/pkg/documents"
)

// --- orders ---

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
	// failConflicts makes the next N UpdateWithVersion calls lose the
	// optimistic write, to exercise the retry loop.
	failConflicts int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func copyOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = make([]entity.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (r *fakeOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) UpdateWithVersion(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failConflicts > 0 {
		r.failConflicts--
		return apperror.ErrConcurrencyConflict
	}
	stored, ok := r.orders[order.ID]
	if !ok || stored.Version != order.Version {
		return apperror.ErrConcurrencyConflict
	}
	order.Version++
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *fakeOrderRepo) UpdateState(_ context.Context, id uuid.UUID, state enum.OrderState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.State = state
	}
	return nil
}

func (r *fakeOrderRepo) List(_ context.Context, _ *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Order, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, *copyOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ListWithCursor(_ context.Context, _ *repository.OrderCursorFilterParams) ([]entity.Order, error) {
	out, _, err := r.List(nil, nil)
	return out, err
}

// --- order items, backed by the same order store ---

type fakeOrderItemRepo struct {
	orders *fakeOrderRepo
}

func (r *fakeOrderItemRepo) Create(_ context.Context, item *entity.OrderItem) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	o, ok := r.orders.orders[item.OrderID]
	if !ok {
		return errors.New("order not found")
	}
	o.Items = append(o.Items, *item)
	return nil
}

func (r *fakeOrderItemRepo) CreateBatch(ctx context.Context, items []entity.OrderItem) error {
	for i := range items {
		if err := r.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeOrderItemRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.OrderItem, error) {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	for _, o := range r.orders.orders {
		for i := range o.Items {
			if o.Items[i].ID == id {
				cp := o.Items[i]
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeOrderItemRepo) Update(_ context.Context, item *entity.OrderItem) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	for _, o := range r.orders.orders {
		for i := range o.Items {
			if o.Items[i].ID == item.ID {
				o.Items[i] = *item
				return nil
			}
		}
	}
	return errors.New("item not found")
}

func (r *fakeOrderItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	for _, o := range r.orders.orders {
		for i := range o.Items {
			if o.Items[i].ID == id {
				o.Items = append(o.Items[:i], o.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r *fakeOrderItemRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	r.orders.mu.Lock()
	defer r.orders.mu.Unlock()
	if o, ok := r.orders.orders[orderID]; ok {
		o.Items = nil
	}
	return nil
}

// --- cash shifts ---

type fakeShiftRepo struct {
	mu        sync.Mutex
	shifts    map[uuid.UUID]*entity.CashShift
	movements map[uuid.UUID][]entity.CashMovement
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{
		shifts:    make(map[uuid.UUID]*entity.CashShift),
		movements: make(map[uuid.UUID][]entity.CashMovement),
	}
}

func (r *fakeShiftRepo) Create(_ context.Context, shift *entity.CashShift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shifts {
		if s.EstablishmentID == shift.EstablishmentID && s.CashierID == shift.CashierID && s.State == enum.ShiftStateOpen {
			return apperror.ErrShiftAlreadyOpen
		}
	}
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	cp := *shift
	r.shifts[shift.ID] = &cp
	return nil
}

func (r *fakeShiftRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.CashShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeShiftRepo) GetOpen(_ context.Context, establishmentID, cashierID uuid.UUID) (*entity.CashShift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shifts {
		if s.EstablishmentID == establishmentID && s.CashierID == cashierID && s.State == enum.ShiftStateOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeShiftRepo) Update(_ context.Context, shift *entity.CashShift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *shift
	r.shifts[shift.ID] = &cp
	return nil
}

func (r *fakeShiftRepo) IncrementTotals(_ context.Context, shiftID uuid.UUID, deltas entity.ShiftTotals) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[shiftID]
	if !ok || s.State != enum.ShiftStateOpen {
		return apperror.ErrShiftAlreadyClosed
	}
	s.CashSales = s.CashSales.Add(deltas.CashSales)
	s.ElectronicSales = s.ElectronicSales.Add(deltas.ElectronicSales)
	s.Expenses = s.Expenses.Add(deltas.Expenses)
	s.GrossSales = s.GrossSales.Add(deltas.GrossSales)
	s.Discounts = s.Discounts.Add(deltas.Discounts)
	s.Tips = s.Tips.Add(deltas.Tips)
	s.NetSales = s.NetSales.Add(deltas.NetSales)
	return nil
}

func (r *fakeShiftRepo) Close(_ context.Context, shift *entity.CashShift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[shift.ID]
	if !ok || s.State != enum.ShiftStateOpen {
		return apperror.ErrShiftAlreadyClosed
	}
	s.State = enum.ShiftStateClosed
	s.ClosedAt = shift.ClosedAt
	s.ClosingDenominations = shift.ClosingDenominations
	s.CountedBalance = shift.CountedBalance
	s.ExpectedBalance = shift.ExpectedBalance
	s.Variance = shift.Variance
	s.Notes = shift.Notes
	return nil
}

func (r *fakeShiftRepo) AppendMovement(_ context.Context, movement *entity.CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	r.movements[movement.ShiftID] = append(r.movements[movement.ShiftID], *movement)
	return nil
}

func (r *fakeShiftRepo) GetMovements(_ context.Context, shiftID uuid.UUID) ([]entity.CashMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.CashMovement(nil), r.movements[shiftID]...), nil
}

func (r *fakeShiftRepo) List(_ context.Context, _ *repository.ShiftFilterParams) ([]entity.CashShift, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.CashShift, 0, len(r.shifts))
	for _, s := range r.shifts {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

// --- invoices ---

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*entity.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*entity.Invoice)}
}

func copyInvoice(i *entity.Invoice) *entity.Invoice {
	cp := *i
	cp.Applications = append([]entity.InvoiceApplication(nil), i.Applications...)
	return &cp
}

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	for i := range invoice.Applications {
		if invoice.Applications[i].ID == uuid.Nil {
			invoice.Applications[i].ID = uuid.New()
		}
		invoice.Applications[i].InvoiceID = invoice.ID
	}
	r.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return copyInvoice(i), nil
}

func (r *fakeInvoiceRepo) GetWithApplications(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.invoices {
		for _, app := range inv.Applications {
			if app.OrderID == orderID {
				out = append(out, *copyInvoice(inv))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) List(_ context.Context, _ *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *copyInvoice(inv))
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) UpdateSubmission(_ context.Context, id uuid.UUID, state enum.SubmissionState, documentRef *string, lastError *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return errors.New("invoice not found")
	}
	inv.SubmissionState = state
	inv.DocumentRef = documentRef
	inv.LastError = lastError
	if lastError != nil {
		inv.RetryCount++
	}
	return nil
}

func (r *fakeInvoiceRepo) ListBySubmissionState(_ context.Context, state enum.SubmissionState, limit int) ([]entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if inv.SubmissionState == state {
			out = append(out, *copyInvoice(inv))
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// --- divisions ---

type fakeDivisionRepo struct {
	mu        sync.Mutex
	divisions []entity.Division
}

func (r *fakeDivisionRepo) Create(_ context.Context, division *entity.Division) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if division.ID == uuid.Nil {
		division.ID = uuid.New()
	}
	r.divisions = append(r.divisions, *division)
	return nil
}

func (r *fakeDivisionRepo) CreateBatch(ctx context.Context, divisions []entity.Division) error {
	for i := range divisions {
		if err := r.Create(ctx, &divisions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeDivisionRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.divisions {
		if r.divisions[i].ID == id {
			cp := r.divisions[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeDivisionRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]entity.Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Division
	for i := range r.divisions {
		if r.divisions[i].OrderID == orderID {
			out = append(out, r.divisions[i])
		}
	}
	return out, nil
}

func (r *fakeDivisionRepo) LinkInvoice(_ context.Context, divisionIDs []uuid.UUID, invoiceID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range divisionIDs {
		for i := range r.divisions {
			if r.divisions[i].ID == id {
				inv := invoiceID
				r.divisions[i].InvoiceID = &inv
			}
		}
	}
	return nil
}

// --- establishments ---

type fakeEstablishmentRepo struct {
	mu             sync.Mutex
	establishments map[uuid.UUID]*entity.Establishment
}

func newFakeEstablishmentRepo() *fakeEstablishmentRepo {
	return &fakeEstablishmentRepo{establishments: make(map[uuid.UUID]*entity.Establishment)}
}

func (r *fakeEstablishmentRepo) Create(_ context.Context, e *entity.Establishment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.establishments[e.ID] = &cp
	return nil
}

func (r *fakeEstablishmentRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Establishment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.establishments[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEstablishmentRepo) GetBySlug(_ context.Context, slug string) (*entity.Establishment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.establishments {
		if e.Slug == slug {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeEstablishmentRepo) Update(_ context.Context, e *entity.Establishment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.establishments[e.ID] = &cp
	return nil
}

// --- unit of work, collaborators ---

// fakeUnitOfWork snapshots whatever fake repos it is given and restores
// them when the function errors, so tests can assert that a failed
// transaction leaves no half-written state. Repos left nil are not
// snapshotted; the zero value still runs the function directly.
type fakeUnitOfWork struct {
	orders    *fakeOrderRepo
	invoices  *fakeInvoiceRepo
	divisions *fakeDivisionRepo
	shifts    *fakeShiftRepo
}

func (u *fakeUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	restore := u.snapshot()
	if err := fn(ctx); err != nil {
		restore()
		return err
	}
	return nil
}

func (u *fakeUnitOfWork) snapshot() func() {
	var orders map[uuid.UUID]*entity.Order
	if u.orders != nil {
		u.orders.mu.Lock()
		orders = make(map[uuid.UUID]*entity.Order, len(u.orders.orders))
		for id, o := range u.orders.orders {
			orders[id] = copyOrder(o)
		}
		u.orders.mu.Unlock()
	}

	var invoices map[uuid.UUID]*entity.Invoice
	if u.invoices != nil {
		u.invoices.mu.Lock()
		invoices = make(map[uuid.UUID]*entity.Invoice, len(u.invoices.invoices))
		for id, inv := range u.invoices.invoices {
			invoices[id] = copyInvoice(inv)
		}
		u.invoices.mu.Unlock()
	}

	var divisions []entity.Division
	if u.divisions != nil {
		u.divisions.mu.Lock()
		divisions = append([]entity.Division(nil), u.divisions.divisions...)
		u.divisions.mu.Unlock()
	}

	var shifts map[uuid.UUID]*entity.CashShift
	var movements map[uuid.UUID][]entity.CashMovement
	if u.shifts != nil {
		u.shifts.mu.Lock()
		shifts = make(map[uuid.UUID]*entity.CashShift, len(u.shifts.shifts))
		for id, s := range u.shifts.shifts {
			cp := *s
			shifts[id] = &cp
		}
		movements = make(map[uuid.UUID][]entity.CashMovement, len(u.shifts.movements))
		for id, m := range u.shifts.movements {
			movements[id] = append([]entity.CashMovement(nil), m...)
		}
		u.shifts.mu.Unlock()
	}

	return func() {
		if u.orders != nil {
			u.orders.mu.Lock()
			u.orders.orders = orders
			u.orders.mu.Unlock()
		}
		if u.invoices != nil {
			u.invoices.mu.Lock()
			u.invoices.invoices = invoices
			u.invoices.mu.Unlock()
		}
		if u.divisions != nil {
			u.divisions.mu.Lock()
			u.divisions.divisions = divisions
			u.divisions.mu.Unlock()
		}
		if u.shifts != nil {
			u.shifts.mu.Lock()
			u.shifts.shifts = shifts
			u.shifts.movements = movements
			u.shifts.mu.Unlock()
		}
	}
}

type decliningGateway struct{}

func (g *decliningGateway) Confirm(_ context.Context, _ decimal.Decimal, _ string) error {
	return errors.New("card declined")
}

// countingGateway approves every charge and remembers how many times it
// was asked.
type countingGateway struct {
	confirms int
}

func (g *countingGateway) Confirm(_ context.Context, _ decimal.Decimal, _ string) error {
	g.confirms++
	return nil
}

type failingRenderer struct{}

func (r *failingRenderer) Render(_ context.Context, _ *documents.InvoiceDocument) (*documents.Handle, error) {
	return nil, errors.New("document service unavailable")
}
