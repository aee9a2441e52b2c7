package campusbite

import (
	"github.com/itsneelabh/campusbite/pkg/blocklist"
	"github.com/itsneelabh/campusbite/pkg/cart"
	"github.com/itsneelabh/campusbite/pkg/checkout"
	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/memory"
	"github.com/itsneelabh/campusbite/pkg/models"
)

// Type aliases so callers can stay on the root package
type (
	Logger = logger.Logger
	Store  = memory.Store

	User         = models.User
	Vendor       = models.Vendor
	Menu         = models.Menu
	MenuItem     = models.MenuItem
	TimeSlot     = models.TimeSlot
	Order        = models.Order
	OrderStatus  = models.OrderStatus
	OrderRequest = models.OrderRequest

	Cart     = cart.Cart
	CartLine = cart.Line

	Checkout        = checkout.Flow
	CheckoutState   = checkout.State
	CheckoutSession = checkout.Session

	DomainResult = blocklist.Result
)

// Order statuses
const (
	OrderPending   = models.OrderPending
	OrderConfirmed = models.OrderConfirmed
	OrderPreparing = models.OrderPreparing
	OrderReady     = models.OrderReady
	OrderCompleted = models.OrderCompleted
	OrderCancelled = models.OrderCancelled
)
