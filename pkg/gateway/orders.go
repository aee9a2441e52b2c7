package gateway

import (
	"context"
	"net/http"

	"github.com/itsneelabh/campusbite/pkg/models"
)

// PlaceOrder submits an order once. Empty item lists, a missing slot and
// non-positive quantities are rejected without calling the backend.
func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &ValidationError{Op: "PlaceOrder", Field: "items", Err: ErrEmptyOrder}
	}
	if req.SlotID == "" {
		return nil, &ValidationError{Op: "PlaceOrder", Field: "slot_id", Err: ErrMissingSlot}
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &ValidationError{Op: "PlaceOrder", Field: "items.quantity", Err: ErrInvalidQty}
		}
	}

	var out models.Order
	err := c.do(ctx, request{op: "PlaceOrder", method: http.MethodPost, path: "/orders", body: req}, &out)
	if err != nil {
		return nil, err
	}
	if out.VendorID == "" {
		out.VendorID = req.VendorID
	}

	c.logger.Info("Order placed", map[string]interface{}{
		"order_id":  out.ID,
		"vendor_id": req.VendorID,
		"slot_id":   req.SlotID,
		"lines":     len(req.Items),
	})
	return &out, nil
}

// ListOrders returns the student's order history
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := c.do(ctx, request{op: "ListOrders", method: http.MethodGet, path: "/orders"}, &out)
	return out, err
}

// GetOrder returns one order
func (c *Client) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var out models.Order
	err := c.do(ctx, request{op: "GetOrder", method: http.MethodGet, path: "/orders/" + escape(orderID)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder asks the backend to cancel an order
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, request{op: "CancelOrder", method: http.MethodDelete, path: "/orders/" + escape(orderID)}, nil)
}

// GetOrderStatus returns the current status of an order
func (c *Client) GetOrderStatus(ctx context.Context, orderID string) (*models.StatusReport, error) {
	var out models.StatusReport
	err := c.do(ctx, request{op: "GetOrderStatus", method: http.MethodGet, path: "/orders/" + escape(orderID) + "/status"}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
