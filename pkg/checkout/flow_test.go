package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/campusbite/pkg/models"
)

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListSlots(ctx context.Context, vendorID string, date time.Time) ([]models.TimeSlot, error) {
	args := m.Called(ctx, vendorID, date)
	slots, _ := args.Get(0).([]models.TimeSlot)
	return slots, args.Error(1)
}

func (m *mockBackend) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

var (
	samosa = models.MenuItem{ID: "a", Name: "Samosa", Price: decimal.NewFromInt(50)}
	chai   = models.MenuItem{ID: "b", Name: "Chai", Price: decimal.NewFromInt(30)}
	slots  = []models.TimeSlot{
		{ID: "1", StartTime: "12:00", EndTime: "12:30", AvailableCapacity: 4, Available: true},
		{ID: "2", StartTime: "12:30", EndTime: "13:00", Available: false},
	}
)

// readyFlow returns a flow with two samosas and a chai, sitting in Confirming with slot 1
func readyFlow(t *testing.T, backend *mockBackend, opts ...Option) *Flow {
	t.Helper()
	backend.On("ListSlots", mock.Anything, "v1", mock.Anything).Return(slots, nil).Once()

	f := NewFlow("v1", backend, opts...)
	f.Cart().AddItem(samosa)
	f.Cart().AddItem(samosa)
	f.Cart().AddItem(chai)

	require.NoError(t, f.ProceedToSlots())
	_, err := f.LoadSlots(context.Background(), time.Time{})
	require.NoError(t, err)
	require.NoError(t, f.SelectSlot("1"))
	require.NoError(t, f.Confirm())
	return f
}

func TestProceedToSlotsRequiresItems(t *testing.T) {
	f := NewFlow("v1", &mockBackend{})

	assert.ErrorIs(t, f.ProceedToSlots(), ErrEmptyCart)
	assert.Equal(t, SelectingMenu, f.State())
	assert.Nil(t, f.Session())
}

func TestSessionSnapshotsCart(t *testing.T) {
	f := NewFlow("v1", &mockBackend{})
	f.Cart().AddItem(samosa)
	f.Cart().AddItem(samosa)
	f.Cart().AddItem(chai)

	require.NoError(t, f.ProceedToSlots())
	sess := f.Session()
	require.NotNil(t, sess)
	assert.Equal(t, "v1", sess.VendorID)

	totals := sess.Totals()
	assert.Equal(t, 3, totals.ItemCount)
	assert.True(t, decimal.NewFromInt(130).Equal(totals.TotalPrice))

	// mutating the returned copy leaves the flow alone
	sess.Lines = nil
	assert.Len(t, f.Session().Lines, 2)
}

func TestLoadSlotsOffersOnlyAvailable(t *testing.T) {
	backend := &mockBackend{}
	date := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	backend.On("ListSlots", mock.Anything, "v1", date).Return(slots, nil)

	f := NewFlow("v1", backend)
	f.Cart().AddItem(samosa)
	require.NoError(t, f.ProceedToSlots())

	offered, err := f.LoadSlots(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, offered, 1)
	assert.Equal(t, "1", offered[0].ID)
	assert.Equal(t, offered, f.OfferedSlots())

	assert.ErrorIs(t, f.SelectSlot("2"), ErrSlotUnavailable)
	assert.ErrorIs(t, f.SelectSlot("nope"), ErrSlotUnavailable)
	backend.AssertExpectations(t)
}

func TestLoadSlotsOutsideSlotSelection(t *testing.T) {
	f := NewFlow("v1", &mockBackend{})
	_, err := f.LoadSlots(context.Background(), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestLoadSlotsErrorKeepsState(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ListSlots", mock.Anything, "v1", mock.Anything).Return(nil, errors.New("boom"))

	f := NewFlow("v1", backend)
	f.Cart().AddItem(chai)
	require.NoError(t, f.ProceedToSlots())

	_, err := f.LoadSlots(context.Background(), time.Time{})
	assert.Error(t, err)
	assert.Equal(t, SelectingSlot, f.State())
}

func TestReloadDropsVanishedSelection(t *testing.T) {
	backend := &mockBackend{}
	backend.On("ListSlots", mock.Anything, "v1", mock.Anything).Return(slots, nil).Once()
	backend.On("ListSlots", mock.Anything, "v1", mock.Anything).
		Return([]models.TimeSlot{{ID: "1", Available: false}, {ID: "3", Available: true}}, nil).Once()

	f := NewFlow("v1", backend)
	f.Cart().AddItem(chai)
	require.NoError(t, f.ProceedToSlots())
	_, err := f.LoadSlots(context.Background(), time.Time{})
	require.NoError(t, err)
	require.NoError(t, f.SelectSlot("1"))

	_, err = f.LoadSlots(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Nil(t, f.Session().Slot)
	assert.ErrorIs(t, f.Confirm(), ErrNoSlotSelected)
}

func TestConfirmRequiresSlot(t *testing.T) {
	f := NewFlow("v1", &mockBackend{})
	f.Cart().AddItem(chai)
	require.NoError(t, f.ProceedToSlots())

	assert.ErrorIs(t, f.Confirm(), ErrNoSlotSelected)
	assert.Equal(t, SelectingSlot, f.State())
}

func TestSubmitOutsideConfirming(t *testing.T) {
	backend := &mockBackend{}
	f := NewFlow("v1", backend)
	f.Cart().AddItem(chai)

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, f.ProceedToSlots())
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	backend.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything)
}

func TestSubmitSuccess(t *testing.T) {
	backend := &mockBackend{}
	var seen []string
	f := readyFlow(t, backend, WithTransitionHook(func(from, to State) {
		seen = append(seen, from.String()+">"+to.String())
	}))

	want := models.OrderRequest{
		VendorID: "v1",
		SlotID:   "1",
		Items: []models.OrderItemRequest{
			{ItemID: "a", Quantity: 2},
			{ItemID: "b", Quantity: 1},
		},
	}
	backend.On("PlaceOrder", mock.Anything, want).
		Return(&models.Order{ID: "o1", Status: models.OrderConfirmed}, nil).Once()

	order, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)

	assert.Equal(t, Placed, f.State())
	assert.Nil(t, f.Session())
	assert.True(t, f.Cart().IsEmpty())
	assert.NoError(t, f.LastError())
	assert.Equal(t, []string{
		"selecting_menu>selecting_slot",
		"selecting_slot>confirming",
		"confirming>submitting",
		"submitting>placed",
	}, seen)

	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	backend.AssertExpectations(t)
}

func TestSubmitFailureReturnsToConfirming(t *testing.T) {
	backend := &mockBackend{}
	var seen []State
	f := readyFlow(t, backend, WithTransitionHook(func(_, to State) { seen = append(seen, to) }))

	placeErr := errors.New("slot is full")
	backend.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, placeErr).Once()

	before := f.Session()
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, placeErr)

	assert.Equal(t, Confirming, f.State())
	assert.ErrorIs(t, f.LastError(), placeErr)
	assert.Equal(t, before, f.Session())
	assert.Equal(t, 2, f.Cart().Quantity("a"))
	assert.Equal(t, []State{SelectingSlot, Confirming, Submitting, Failed, Confirming}, seen)

	// the retry goes through without re-entering anything
	backend.On("PlaceOrder", mock.Anything, mock.Anything).Return(&models.Order{ID: "o2"}, nil).Once()
	order, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o2", order.ID)
	backend.AssertNumberOfCalls(t, "PlaceOrder", 2)
}

func TestConcurrentSubmitRejected(t *testing.T) {
	backend := &mockBackend{}
	f := readyFlow(t, backend)

	release := make(chan struct{})
	entered := make(chan struct{})
	backend.On("PlaceOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.Order{ID: "o1"}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.Submit(context.Background())
		assert.NoError(t, err)
	}()

	<-entered
	assert.Equal(t, Submitting, f.State())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(release)
	wg.Wait()
	assert.Equal(t, Placed, f.State())
	backend.AssertNumberOfCalls(t, "PlaceOrder", 1)
}

func TestBack(t *testing.T) {
	backend := &mockBackend{}
	f := readyFlow(t, backend)

	require.NoError(t, f.Back())
	assert.Equal(t, SelectingSlot, f.State())
	require.NotNil(t, f.Session().Slot)
	assert.Equal(t, "1", f.Session().Slot.ID)

	require.NoError(t, f.Back())
	assert.Equal(t, SelectingMenu, f.State())
	assert.Nil(t, f.Session())
	assert.Empty(t, f.OfferedSlots())
	assert.Equal(t, 3, f.Cart().Totals().ItemCount)

	assert.ErrorIs(t, f.Back(), ErrInvalidTransition)
}

func TestHookMayReadFlow(t *testing.T) {
	var f *Flow
	var states []State
	f = NewFlow("v1", &mockBackend{}, WithTransitionHook(func(_, _ State) {
		states = append(states, f.State())
	}))
	f.Cart().AddItem(chai)

	require.NoError(t, f.ProceedToSlots())
	assert.Equal(t, []State{SelectingSlot}, states)
}
