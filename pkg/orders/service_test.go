package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/campusbite/pkg/models"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]models.Order)
	return list, args.Error(1)
}

func (m *mockBackend) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *mockBackend) CancelOrder(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockBackend) GetOrderStatus(ctx context.Context, id string) (*models.StatusReport, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*models.StatusReport)
	return report, args.Error(1)
}

func TestHistoryNewestFirst(t *testing.T) {
	day := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)
	backend := &mockBackend{}
	backend.On("ListOrders", mock.Anything).Return([]models.Order{
		{ID: "old", CreatedAt: day.Add(-48 * time.Hour)},
		{ID: "undated"},
		{ID: "new", CreatedAt: day},
		{ID: "mid", CreatedAt: day.Add(-time.Hour)},
	}, nil)

	list, err := NewService(backend, nil).History(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(list))
	for _, o := range list {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old", "undated"}, ids)
}

func TestHistoryError(t *testing.T) {
	backend := &mockBackend{}
	boom := errors.New("boom")
	backend.On("ListOrders", mock.Anything).Return(nil, boom)

	_, err := NewService(backend, nil).History(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestCancelRefusesLateOrders(t *testing.T) {
	backend := &mockBackend{}
	svc := NewService(backend, nil)

	for _, status := range []models.OrderStatus{models.OrderPreparing, models.OrderReady, models.OrderCompleted, models.OrderCancelled} {
		_, err := svc.Cancel(context.Background(), models.Order{ID: "o1", Status: status})
		assert.ErrorIs(t, err, ErrNotCancellable, status)
	}
	backend.AssertNotCalled(t, "CancelOrder", mock.Anything, mock.Anything)
}

func TestCancelRefetches(t *testing.T) {
	backend := &mockBackend{}
	backend.On("CancelOrder", mock.Anything, "o1").Return(nil).Once()
	backend.On("GetOrder", mock.Anything, "o1").
		Return(&models.Order{ID: "o1", Status: models.OrderCancelled}, nil).Once()

	order, err := NewService(backend, nil).Cancel(context.Background(), models.Order{ID: "o1", Status: models.OrderConfirmed})
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, order.Status)
	backend.AssertExpectations(t)
}

func TestCancelBackendError(t *testing.T) {
	backend := &mockBackend{}
	boom := errors.New("cannot cancel")
	backend.On("CancelOrder", mock.Anything, "o1").Return(boom)

	_, err := NewService(backend, nil).Cancel(context.Background(), models.Order{ID: "o1", Status: models.OrderPending})
	assert.ErrorIs(t, err, boom)
	backend.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestStatus(t *testing.T) {
	backend := &mockBackend{}
	backend.On("GetOrderStatus", mock.Anything, "o1").
		Return(&models.StatusReport{Status: models.OrderReady}, nil)

	report, err := NewService(backend, nil).Status(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderReady, report.Status)
}
