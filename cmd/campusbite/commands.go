package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/itsneelabh/campusbite"
	"github.com/itsneelabh/campusbite/pkg/models"
)

type cli struct {
	app    *campusbite.App
	out    io.Writer
	errOut io.Writer
}

type command func(ctx context.Context, c *cli, args []string) error

var commands = map[string]command{
	"login":        cmdLogin,
	"verify":       cmdVerify,
	"logout":       cmdLogout,
	"whoami":       cmdWhoami,
	"vendors":      cmdVendors,
	"vendor":       cmdVendor,
	"items":        cmdItems,
	"slots":        cmdSlots,
	"order":        cmdOrder,
	"orders":       cmdOrders,
	"order-detail": cmdOrderDetail,
	"status":       cmdStatus,
	"cancel":       cmdCancel,
}

func exactArgs(args []string, n int) error {
	if len(args) != n {
		return errUsage
	}
	return nil
}

func cmdLogin(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	resp, err := c.app.Client.RequestOTP(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, resp.Message)
	if resp.OTP != "" {
		fmt.Fprintf(c.out, "Development OTP: %s\n", resp.OTP)
	}
	return nil
}

func cmdVerify(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 2); err != nil {
		return err
	}
	auth, err := c.app.Client.VerifyOTP(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s\n", auth.User.DisplayName())
	return nil
}

func cmdLogout(ctx context.Context, c *cli, args []string) error {
	if err := c.app.Client.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "Signed out")
	return nil
}

func cmdWhoami(ctx context.Context, c *cli, args []string) error {
	user, err := c.app.Client.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Fprintln(c.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(c.out, "%s (%s)\n", user.DisplayName(), user.ID)
	return nil
}

func cmdVendors(ctx context.Context, c *cli, args []string) error {
	vendors, err := c.app.Client.ListVendors(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRATING\tDELIVERY")
	for _, v := range vendors {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\n", v.ID, v.Name, v.Rating, v.DeliveryTime)
	}
	return tw.Flush()
}

func cmdVendor(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	detail, err := c.app.Client.LoadVendor(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n%s\n\n", detail.Vendor.Name, detail.Vendor.Description)
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MENU\tNAME")
	for _, m := range detail.Menus {
		fmt.Fprintf(tw, "%s\t%s\n", m.ID, m.Name)
	}
	return tw.Flush()
}

func cmdItems(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	items, err := c.app.Client.ListMenuItems(ctx, args[0])
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", it.ID, it.Name, it.Price.StringFixed(2))
	}
	return tw.Flush()
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return d, nil
}

func cmdSlots(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("slots", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	date := fs.String("date", "", "day to list (YYYY-MM-DD)")
	if len(args) == 0 {
		return errUsage
	}
	vendorID := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	day, err := parseDate(*date)
	if err != nil {
		return err
	}

	slots, err := c.app.Client.ListSlots(ctx, vendorID, day)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWINDOW\tCAPACITY\tAVAILABLE")
	for _, s := range slots {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\n", s.ID, s.Label(), s.AvailableCapacity, s.Available)
	}
	return tw.Flush()
}

// itemFlag collects repeated -item id=qty values
type itemFlag []models.OrderItemRequest

func (f *itemFlag) String() string {
	parts := make([]string, 0, len(*f))
	for _, it := range *f {
		parts = append(parts, fmt.Sprintf("%s=%d", it.ItemID, it.Quantity))
	}
	return strings.Join(parts, ",")
}

func (f *itemFlag) Set(v string) error {
	id, qty, found := strings.Cut(v, "=")
	n := 1
	if found {
		var err error
		if n, err = strconv.Atoi(qty); err != nil || n <= 0 {
			return fmt.Errorf("quantity for %s must be a positive integer", id)
		}
	}
	if id == "" {
		return fmt.Errorf("item id is required")
	}
	*f = append(*f, models.OrderItemRequest{ItemID: id, Quantity: n})
	return nil
}

func cmdOrder(ctx context.Context, c *cli, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	var items itemFlag
	vendorID := fs.String("vendor", "", "vendor id")
	slotID := fs.String("slot", "", "pickup slot id")
	date := fs.String("date", "", "pickup day (YYYY-MM-DD)")
	fs.Var(&items, "item", "item id=quantity, repeatable")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *vendorID == "" {
		return errUsage
	}
	day, err := parseDate(*date)
	if err != nil {
		return err
	}

	catalog, err := vendorItems(ctx, c.app, *vendorID)
	if err != nil {
		return err
	}

	flow := c.app.NewCheckout(*vendorID)
	for _, req := range items {
		item, ok := catalog[req.ItemID]
		if !ok {
			return fmt.Errorf("item %s is not sold by %s", req.ItemID, *vendorID)
		}
		flow.Cart().AddItem(item)
		flow.Cart().SetQuantity(item.ID, flow.Cart().Quantity(item.ID)+req.Quantity-1)
	}

	if err := flow.ProceedToSlots(); err != nil {
		return err
	}
	if _, err := flow.LoadSlots(ctx, day); err != nil {
		return err
	}
	if *slotID != "" {
		if err := flow.SelectSlot(*slotID); err != nil {
			return err
		}
	}
	if err := flow.Confirm(); err != nil {
		return err
	}

	sess := flow.Session()
	totals := sess.Totals()
	fmt.Fprintf(c.out, "Ordering %d item(s), total %s, pickup %s\n",
		totals.ItemCount, totals.TotalPrice.StringFixed(2), sess.Slot.Label())

	order, err := flow.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Order %s is %s\n", order.ID, order.Status)
	return nil
}

// vendorItems indexes every item across a vendor's menus by id
func vendorItems(ctx context.Context, app *campusbite.App, vendorID string) (map[string]models.MenuItem, error) {
	detail, err := app.Client.LoadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.MenuItem)
	for _, m := range detail.Menus {
		items, err := app.Client.ListMenuItems(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			out[it.ID] = it
		}
	}
	return out, nil
}

func cmdOrders(ctx context.Context, c *cli, args []string) error {
	list, err := c.app.Orders.History(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No orders yet")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVENDOR\tITEMS\tTOTAL\tPICKUP\tSTATUS\tPLACED")
	for _, o := range list {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, vendorLabel(o), o.ItemCount(), o.Total.StringFixed(2), o.SlotLabel(), o.Status, placedAt(o))
	}
	return tw.Flush()
}

func cmdOrderDetail(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	order, err := c.app.Orders.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	printOrder(c.out, order)
	return nil
}

func cmdStatus(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	report, err := c.app.Orders.Status(ctx, args[0])
	if err != nil {
		return err
	}
	if report.EstimatedTime != "" {
		fmt.Fprintf(c.out, "%s (ready in %s)\n", report.Status, report.EstimatedTime)
		return nil
	}
	fmt.Fprintln(c.out, report.Status)
	return nil
}

func cmdCancel(ctx context.Context, c *cli, args []string) error {
	if err := exactArgs(args, 1); err != nil {
		return err
	}
	order, err := c.app.Orders.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	updated, err := c.app.Orders.Cancel(ctx, *order)
	if err != nil {
		return err
	}
	printOrder(c.out, updated)
	return nil
}

func printOrder(w io.Writer, o *models.Order) {
	fmt.Fprintf(w, "Order %s\n", o.ID)
	fmt.Fprintf(w, "Vendor:  %s\n", vendorLabel(*o))
	fmt.Fprintf(w, "Status:  %s\n", o.Status)
	fmt.Fprintf(w, "Pickup:  %s\n", o.SlotLabel())
	fmt.Fprintf(w, "Placed:  %s\n", placedAt(*o))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nITEM\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range o.Items {
		name := l.Name
		if name == "" {
			name = l.ItemID
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, l.Quantity, l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total:   %s\n", o.Total.StringFixed(2))
	if o.CanCancel() {
		fmt.Fprintln(w, "This order can still be cancelled.")
	}
}

func vendorLabel(o models.Order) string {
	if o.VendorName != "" {
		return o.VendorName
	}
	return o.VendorID
}

func placedAt(o models.Order) string {
	if o.CreatedAt.IsZero() {
		return "-"
	}
	return o.CreatedAt.Local().Format("2006-01-02 15:04")
}
