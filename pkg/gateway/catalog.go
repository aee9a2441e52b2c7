package gateway

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/itsneelabh/campusbite/pkg/models"
)

// ListVendors returns every vendor
func (c *Client) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	var out []models.Vendor
	err := c.do(ctx, request{op: "ListVendors", method: http.MethodGet, path: "/vendors"}, &out)
	return out, err
}

// GetVendor returns one vendor
func (c *Client) GetVendor(ctx context.Context, vendorID string) (*models.Vendor, error) {
	var out models.Vendor
	err := c.do(ctx, request{op: "GetVendor", method: http.MethodGet, path: "/vendors/" + escape(vendorID)}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListVendorMenus returns a vendor's menus
func (c *Client) ListVendorMenus(ctx context.Context, vendorID string) ([]models.Menu, error) {
	var out []models.Menu
	err := c.do(ctx, request{op: "ListVendorMenus", method: http.MethodGet, path: "/vendors/" + escape(vendorID) + "/menus"}, &out)
	return out, err
}

// LoadVendor fetches the vendor and its menus concurrently. If either call
// fails the whole load fails and the other call is cancelled.
func (c *Client) LoadVendor(ctx context.Context, vendorID string) (*models.VendorDetail, error) {
	var (
		vendor *models.Vendor
		menus  []models.Menu
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := c.GetVendor(gctx, vendorID)
		vendor = v
		return err
	})
	g.Go(func() error {
		m, err := c.ListVendorMenus(gctx, vendorID)
		menus = m
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.VendorDetail{Vendor: *vendor, Menus: menus}, nil
}

// ListMenuItems returns the items on a menu
func (c *Client) ListMenuItems(ctx context.Context, menuID string) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := c.do(ctx, request{op: "ListMenuItems", method: http.MethodGet, path: "/menus/" + escape(menuID) + "/items"}, &out)
	return out, err
}

// ListSlots returns a vendor's pickup slots. A zero date lets the backend
// pick its default day.
func (c *Client) ListSlots(ctx context.Context, vendorID string, date time.Time) ([]models.TimeSlot, error) {
	var query url.Values
	if !date.IsZero() {
		query = url.Values{"date": {date.Format("2006-01-02")}}
	}

	var out []models.TimeSlot
	err := c.do(ctx, request{
		op:     "ListSlots",
		method: http.MethodGet,
		path:   "/vendors/" + escape(vendorID) + "/slots",
		query:  query,
	}, &out)
	return out, err
}
