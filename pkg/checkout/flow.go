// Package checkout drives one vendor checkout from cart to placed order.
//
// A Flow moves through SelectingMenu, SelectingSlot, Confirming and
// Submitting, ending in Placed. A failed submission passes through Failed
// and lands back in Confirming with the cart and slot intact, so the student
// can retry without re-entering anything.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/itsneelabh/campusbite/pkg/cart"
	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/models"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrNoSlotSelected       = errors.New("no pickup slot selected")
	ErrSlotUnavailable      = errors.New("slot is not offered")
	ErrInvalidTransition    = errors.New("invalid checkout transition")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
)

// State is a checkout step
type State int

const (
	SelectingMenu State = iota
	SelectingSlot
	Confirming
	Submitting
	Placed
	Failed
)

func (s State) String() string {
	switch s {
	case SelectingMenu:
		return "selecting_menu"
	case SelectingSlot:
		return "selecting_slot"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Placed:
		return "placed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SlotLister lists a vendor's pickup slots
type SlotLister interface {
	ListSlots(ctx context.Context, vendorID string, date time.Time) ([]models.TimeSlot, error)
}

// OrderPlacer submits an order
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
}

// Backend is what a Flow needs from the ordering API. *gateway.Client
// satisfies it.
type Backend interface {
	SlotLister
	OrderPlacer
}

// Session is the checkout in progress. Totals are derived from Lines on
// every call.
type Session struct {
	VendorID string
	Lines    []cart.Line
	Slot     *models.TimeSlot
}

// Totals sums the session lines
func (s Session) Totals() cart.Totals {
	return cart.TotalsOf(s.Lines)
}

// Request builds the order submission
func (s Session) Request() models.OrderRequest {
	req := models.OrderRequest{
		VendorID: s.VendorID,
		Items:    make([]models.OrderItemRequest, 0, len(s.Lines)),
	}
	if s.Slot != nil {
		req.SlotID = s.Slot.ID
	}
	for _, l := range s.Lines {
		req.Items = append(req.Items, models.OrderItemRequest{ItemID: l.Item.ID, Quantity: l.Quantity})
	}
	return req
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{VendorID: s.VendorID, Lines: append([]cart.Line(nil), s.Lines...)}
	if s.Slot != nil {
		slot := *s.Slot
		out.Slot = &slot
	}
	return out
}

// TransitionHook observes every state change
type TransitionHook func(from, to State)

// Option configures a Flow
type Option func(*Flow)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithTransitionHook registers fn to run after each transition. Hooks run
// outside the flow's lock and may call back into the flow.
func WithTransitionHook(fn TransitionHook) Option {
	return func(f *Flow) { f.hooks = append(f.hooks, fn) }
}

// WithCart starts the flow from an existing cart
func WithCart(c *cart.Cart) Option {
	return func(f *Flow) { f.cart = c }
}

type transition struct{ from, to State }

// Flow is a single vendor checkout
type Flow struct {
	mu       sync.Mutex
	vendorID string
	backend  Backend
	cart     *cart.Cart
	state    State
	session  *Session
	offered  []models.TimeSlot
	lastErr  error
	logger   logger.Logger
	hooks    []TransitionHook
	pending  []transition
}

// NewFlow starts a checkout for vendorID in SelectingMenu
func NewFlow(vendorID string, backend Backend, opts ...Option) *Flow {
	f := &Flow{
		vendorID: vendorID,
		backend:  backend,
		state:    SelectingMenu,
		logger:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.cart == nil {
		f.cart = cart.New()
	}
	f.logger = f.logger.With(map[string]interface{}{"vendor_id": vendorID})
	return f
}

// VendorID is the vendor being ordered from
func (f *Flow) VendorID() string { return f.vendorID }

// Cart is the mutable cart. Changes made after ProceedToSlots do not reach
// the current session until the flow is taken back to SelectingMenu.
func (f *Flow) Cart() *cart.Cart { return f.cart }

// State is the current step
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Session returns a copy of the checkout in progress, or nil before
// ProceedToSlots and after the order is placed.
func (f *Flow) Session() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session.clone()
}

// LastError is the error of the most recent failed submission
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// OfferedSlots are the available slots from the last LoadSlots
func (f *Flow) OfferedSlots() []models.TimeSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TimeSlot(nil), f.offered...)
}

// ProceedToSlots snapshots the cart into a session and moves to slot selection
func (f *Flow) ProceedToSlots() error {
	f.mu.Lock()
	defer f.unlock()

	if f.state != SelectingMenu {
		return f.invalid("ProceedToSlots")
	}
	if f.cart.IsEmpty() {
		return ErrEmptyCart
	}

	f.session = &Session{VendorID: f.vendorID, Lines: f.cart.Lines()}
	f.transition(SelectingSlot)
	return nil
}

// LoadSlots fetches the vendor's slots for date and offers the available
// ones. A previously selected slot that is no longer offered is dropped.
func (f *Flow) LoadSlots(ctx context.Context, date time.Time) ([]models.TimeSlot, error) {
	f.mu.Lock()
	if f.state != SelectingSlot {
		err := f.invalid("LoadSlots")
		f.unlock()
		return nil, err
	}
	f.mu.Unlock()

	slots, err := f.backend.ListSlots(ctx, f.vendorID, date)
	if err != nil {
		return nil, fmt.Errorf("load slots: %w", err)
	}

	offered := make([]models.TimeSlot, 0, len(slots))
	for _, s := range slots {
		if s.Available {
			offered = append(offered, s)
		}
	}

	f.mu.Lock()
	defer f.unlock()
	if f.state != SelectingSlot {
		return nil, f.invalid("LoadSlots")
	}
	f.offered = offered
	if f.session.Slot != nil && !containsSlot(offered, f.session.Slot.ID) {
		f.session.Slot = nil
	}

	f.logger.Debug("Slots loaded", map[string]interface{}{
		"total":   len(slots),
		"offered": len(offered),
	})
	return append([]models.TimeSlot(nil), offered...), nil
}

// SelectSlot picks one of the offered slots
func (f *Flow) SelectSlot(slotID string) error {
	f.mu.Lock()
	defer f.unlock()

	if f.state != SelectingSlot {
		return f.invalid("SelectSlot")
	}
	for _, s := range f.offered {
		if s.ID == slotID {
			slot := s
			f.session.Slot = &slot
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSlotUnavailable, slotID)
}

// Confirm moves to the confirmation step
func (f *Flow) Confirm() error {
	f.mu.Lock()
	defer f.unlock()

	if f.state != SelectingSlot {
		return f.invalid("Confirm")
	}
	if f.session.Slot == nil {
		return ErrNoSlotSelected
	}
	f.transition(Confirming)
	return nil
}

// Back steps one state back: Confirming to SelectingSlot keeps the slot,
// SelectingSlot to SelectingMenu drops the session.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.unlock()

	switch f.state {
	case Confirming:
		f.transition(SelectingSlot)
	case SelectingSlot:
		f.session = nil
		f.offered = nil
		f.transition(SelectingMenu)
	default:
		return f.invalid("Back")
	}
	return nil
}

// Submit places the order exactly once. On success the session and cart are
// discarded and the flow ends in Placed. On failure the flow returns to
// Confirming, the error is kept as LastError and nothing is retried.
func (f *Flow) Submit(ctx context.Context) (*models.Order, error) {
	f.mu.Lock()
	switch f.state {
	case Confirming:
	case Submitting:
		f.unlock()
		return nil, ErrSubmissionInProgress
	default:
		err := f.invalid("Submit")
		f.unlock()
		return nil, err
	}
	if f.session == nil || len(f.session.Lines) == 0 {
		f.unlock()
		return nil, ErrEmptyCart
	}
	if f.session.Slot == nil {
		f.unlock()
		return nil, ErrNoSlotSelected
	}
	req := f.session.Request()
	f.transition(Submitting)
	f.unlock()

	order, err := f.backend.PlaceOrder(ctx, req)

	f.mu.Lock()
	defer f.unlock()

	if err != nil {
		f.lastErr = err
		f.transition(Failed)
		f.transition(Confirming)
		f.logger.Warn("Order submission failed", map[string]interface{}{
			"slot_id": req.SlotID,
			"error":   err,
		})
		return nil, err
	}

	f.lastErr = nil
	f.session = nil
	f.offered = nil
	f.cart.Clear()
	f.transition(Placed)
	f.logger.Info("Order placed", map[string]interface{}{
		"order_id": order.ID,
		"slot_id":  req.SlotID,
	})
	return order, nil
}

// transition must be called with mu held
func (f *Flow) transition(to State) {
	from := f.state
	f.state = to
	f.pending = append(f.pending, transition{from: from, to: to})
	f.logger.Debug("Checkout transition", map[string]interface{}{
		"from": from.String(),
		"to":   to.String(),
	})
}

// unlock releases mu and then runs hooks for the transitions made under it
func (f *Flow) unlock() {
	pending := f.pending
	f.pending = nil
	hooks := f.hooks
	f.mu.Unlock()

	for _, t := range pending {
		for _, h := range hooks {
			h(t.from, t.to)
		}
	}
}

func (f *Flow) invalid(op string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, op, f.state)
}

func containsSlot(slots []models.TimeSlot, id string) bool {
	for _, s := range slots {
		if s.ID == id {
			return true
		}
	}
	return false
}
