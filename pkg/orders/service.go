// Package orders serves the order history and detail views.
package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/models"
)

// ErrNotCancellable is returned for orders past the confirmed stage
var ErrNotCancellable = errors.New("order can no longer be cancelled")

// Backend is the subset of the gateway the service uses
type Backend interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrderStatus(ctx context.Context, orderID string) (*models.StatusReport, error)
}

// Service reads and cancels the student's orders
type Service struct {
	backend Backend
	logger  logger.Logger
}

// NewService creates a Service
func NewService(backend Backend, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{backend: backend, logger: log}
}

// History returns every order, newest first. Orders without a timestamp
// sort last and keep the backend's order among themselves.
func (s *Service) History(ctx context.Context) ([]models.Order, error) {
	list, err := s.backend.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].CreatedAt, list[j].CreatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b)
	})
	return list, nil
}

// Detail returns one order
func (s *Service) Detail(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	return order, nil
}

// Status returns the lightweight status of one order
func (s *Service) Status(ctx context.Context, orderID string) (*models.StatusReport, error) {
	report, err := s.backend.GetOrderStatus(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s status: %w", orderID, err)
	}
	return report, nil
}

// Cancel cancels order and returns the refreshed detail. Orders the student
// may no longer cancel are refused without calling the backend.
func (s *Service) Cancel(ctx context.Context, order models.Order) (*models.Order, error) {
	if !order.CanCancel() {
		return nil, fmt.Errorf("%w: order %s is %s", ErrNotCancellable, order.ID, order.Status)
	}

	if err := s.backend.CancelOrder(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("cancel order %s: %w", order.ID, err)
	}
	s.logger.Info("Order cancelled", map[string]interface{}{"order_id": order.ID})

	return s.Detail(ctx, order.ID)
}
