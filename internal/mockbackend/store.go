package mockbackend

import (
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itsneelabh/campusbite/pkg/models"
)

// DevOTP is the code every login accepts
const DevOTP = "123456"

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// Error carries the HTTP status a store failure maps to
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string { return e.Detail }

func errorf(status int, format string, args ...interface{}) *Error {
	return &Error{Status: status, Detail: fmt.Sprintf(format, args...)}
}

type slotRecord struct {
	slot     models.TimeSlot
	vendorID string
}

type orderRecord struct {
	order models.Order
	phone string
}

// Store holds the backend state in memory
type Store struct {
	mu sync.RWMutex

	vendors     []models.Vendor
	menus       map[string][]models.Menu     // by vendor
	items       map[string][]models.MenuItem // by menu
	itemsByID   map[string]models.MenuItem
	slots       map[string]*slotRecord
	vendorSlots map[string][]string

	pendingOTP map[string]string // phone -> code
	tokens     map[string]string // token -> phone
	users      map[string]models.User
	orders     map[string]*orderRecord

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		menus:       make(map[string][]models.Menu),
		items:       make(map[string][]models.MenuItem),
		itemsByID:   make(map[string]models.MenuItem),
		slots:       make(map[string]*slotRecord),
		vendorSlots: make(map[string][]string),
		pendingOTP:  make(map[string]string),
		tokens:      make(map[string]string),
		users:       make(map[string]models.User),
		orders:      make(map[string]*orderRecord),
		now:         time.Now,
	}
}

// AddVendor registers a vendor
func (s *Store) AddVendor(v models.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors = append(s.vendors, v)
}

// AddMenu registers a menu and its items
func (s *Store) AddMenu(m models.Menu, items ...models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[m.VendorID] = append(s.menus[m.VendorID], m)
	for _, it := range items {
		it.MenuID = m.ID
		s.items[m.ID] = append(s.items[m.ID], it)
		s.itemsByID[it.ID] = it
	}
}

// AddSlot registers a pickup slot for a vendor
func (s *Store) AddSlot(vendorID string, slot models.TimeSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot.Available = slot.AvailableCapacity > 0
	s.slots[slot.ID] = &slotRecord{slot: slot, vendorID: vendorID}
	s.vendorSlots[vendorID] = append(s.vendorSlots[vendorID], slot.ID)
}

// RequestOTP records a pending login for phone
func (s *Store) RequestOTP(phone string) (string, error) {
	if !phonePattern.MatchString(phone) {
		return "", errorf(http.StatusBadRequest, "Invalid phone number")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingOTP[phone] = DevOTP
	return DevOTP, nil
}

// VerifyOTP consumes a pending login and issues a bearer token
func (s *Store) VerifyOTP(phone, otp string) (models.AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want, ok := s.pendingOTP[phone]
	if !ok {
		return models.AuthResponse{}, errorf(http.StatusBadRequest, "OTP not requested for this number")
	}
	if otp != want {
		return models.AuthResponse{}, errorf(http.StatusBadRequest, "Invalid OTP")
	}
	delete(s.pendingOTP, phone)

	user, ok := s.users[phone]
	if !ok {
		user = models.User{ID: uuid.New().String(), Phone: phone}
		s.users[phone] = user
	}

	token := uuid.New().String()
	s.tokens[token] = phone
	return models.AuthResponse{Token: token, User: user}, nil
}

// Authenticate maps a bearer token to its phone
func (s *Store) Authenticate(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	phone, ok := s.tokens[token]
	return phone, ok
}

// RevokeToken invalidates a bearer token, as an expiry would
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Vendors lists every vendor
func (s *Store) Vendors() []models.Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vendor{}, s.vendors...)
}

// Vendor returns one vendor
func (s *Store) Vendor(id string) (models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vendorLocked(id)
}

func (s *Store) vendorLocked(id string) (models.Vendor, error) {
	for _, v := range s.vendors {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Vendor{}, errorf(http.StatusNotFound, "Vendor not found")
}

// Menus lists a vendor's menus
func (s *Store) Menus(vendorID string) ([]models.Menu, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.vendorLocked(vendorID); err != nil {
		return nil, err
	}
	return append([]models.Menu{}, s.menus[vendorID]...), nil
}

// Items lists the items on a menu
func (s *Store) Items(menuID string) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.items[menuID]
	if !ok {
		return nil, errorf(http.StatusNotFound, "Menu not found")
	}
	return append([]models.MenuItem{}, items...), nil
}

// Slots lists a vendor's slots with their current capacity
func (s *Store) Slots(vendorID string) ([]models.TimeSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.vendorLocked(vendorID); err != nil {
		return nil, err
	}
	out := make([]models.TimeSlot, 0, len(s.vendorSlots[vendorID]))
	for _, id := range s.vendorSlots[vendorID] {
		out = append(out, s.slots[id].slot)
	}
	return out, nil
}

// PlaceOrder books one unit of slot capacity and records a confirmed order.
// A student may hold one live order per slot.
func (s *Store) PlaceOrder(phone string, req models.OrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, errorf(http.StatusBadRequest, "Order must contain at least one item")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.slots[req.SlotID]
	if !ok {
		return models.Order{}, errorf(http.StatusNotFound, "Slot not found")
	}
	if req.VendorID != "" && req.VendorID != rec.vendorID {
		return models.Order{}, errorf(http.StatusBadRequest, "Slot does not belong to vendor")
	}
	vendor, err := s.vendorLocked(rec.vendorID)
	if err != nil {
		return models.Order{}, err
	}

	for _, o := range s.orders {
		if o.phone == phone && o.order.Slot.ID == req.SlotID && o.order.Status != models.OrderCancelled {
			return models.Order{}, errorf(http.StatusConflict, "You have already booked this slot")
		}
	}
	if rec.slot.AvailableCapacity <= 0 {
		return models.Order{}, errorf(http.StatusConflict, "Slot is full")
	}

	lines := make([]models.OrderLine, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return models.Order{}, errorf(http.StatusBadRequest, "Quantity must be positive")
		}
		item, ok := s.itemsByID[it.ItemID]
		if !ok {
			return models.Order{}, errorf(http.StatusBadRequest, "Unknown item %s", it.ItemID)
		}
		line := models.OrderLine{ItemID: item.ID, Name: item.Name, Quantity: it.Quantity, Price: item.Price}
		lines = append(lines, line)
		total = total.Add(line.Subtotal())
	}

	rec.slot.AvailableCapacity--
	rec.slot.Available = rec.slot.AvailableCapacity > 0

	order := models.Order{
		ID:               uuid.New().String(),
		VendorID:         vendor.ID,
		VendorName:       vendor.Name,
		Items:            lines,
		Total:            total,
		Status:           models.OrderConfirmed,
		Slot:             rec.slot,
		CreatedAt:        s.now().UTC(),
		EstimatedMinutes: 15,
	}
	s.orders[order.ID] = &orderRecord{order: order, phone: phone}
	return order, nil
}

// Orders lists a student's orders in placement order
func (s *Store) Orders(phone string) []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.phone == phone {
			out = append(out, o.order)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Order returns one of a student's orders
func (s *Store) Order(phone, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.orders[id]
	if !ok || rec.phone != phone {
		return models.Order{}, errorf(http.StatusNotFound, "Order not found")
	}
	return rec.order, nil
}

// CancelOrder cancels an order and gives its slot capacity back
func (s *Store) CancelOrder(phone, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok || rec.phone != phone {
		return errorf(http.StatusNotFound, "Order not found")
	}
	switch rec.order.Status {
	case models.OrderCancelled:
		return errorf(http.StatusBadRequest, "Order already cancelled")
	case models.OrderCompleted:
		return errorf(http.StatusBadRequest, "Completed orders cannot be cancelled")
	}

	rec.order.Status = models.OrderCancelled
	if slot, ok := s.slots[rec.order.Slot.ID]; ok {
		slot.slot.AvailableCapacity++
		slot.slot.Available = true
	}
	return nil
}

// AdvanceOrder moves an order one step along its forward path, as the
// vendor would
func (s *Store) AdvanceOrder(id string) (models.OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.orders[id]
	if !ok {
		return "", errorf(http.StatusNotFound, "Order not found")
	}
	next, ok := nextStatus[rec.order.Status]
	if !ok || !rec.order.Status.CanTransitionTo(next) {
		return rec.order.Status, errorf(http.StatusBadRequest, "Order is %s", rec.order.Status)
	}
	rec.order.Status = next
	return next, nil
}

var nextStatus = map[models.OrderStatus]models.OrderStatus{
	models.OrderPending:   models.OrderConfirmed,
	models.OrderConfirmed: models.OrderPreparing,
	models.OrderPreparing: models.OrderReady,
	models.OrderReady:     models.OrderCompleted,
}
