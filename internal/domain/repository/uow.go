package repository

import "context"

// UnitOfWork runs fn atomically: every repository call made with the
// context passed to fn joins the same transaction, and an error from fn
// rolls all of it back. The settlement coordinator wraps its shift, order
// and invoice writes in one unit so a crash cannot leave a sale booked
// without its invoice, or vice versa.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
