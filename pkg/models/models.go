// Package models holds the data exchanged with the campus food-ordering backend.
package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// User is the signed-in student
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

// DisplayName falls back to the phone number when no name is set
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Phone
}

// Vendor is a campus food outlet
type Vendor struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	ImageURL          string  `json:"image_url,omitempty"`
	Rating            float64 `json:"rating"`
	DeliveryTime      string  `json:"delivery_time"`
	EstimatedDelivery string  `json:"estimated_delivery"`
}

// Menu groups a vendor's items
type Menu struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	VendorID    string `json:"vendor_id"`
	ImageURL    string `json:"image_url,omitempty"`
	Description string `json:"description"`
}

// MenuItem is one orderable dish
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	MenuID      string          `json:"menu_id"`
}

// TimeSlot is a pickup window offered by a vendor
type TimeSlot struct {
	ID                string `json:"id"`
	Time              string `json:"time,omitempty"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	AvailableCapacity int    `json:"available_capacity"`
	Available         bool   `json:"available"`
}

// Label is the human-readable window, e.g. "12:00 - 12:30"
func (s TimeSlot) Label() string {
	if s.Time != "" {
		return s.Time
	}
	if s.StartTime == "" && s.EndTime == "" {
		return ""
	}
	return fmt.Sprintf("%s - %s", s.StartTime, s.EndTime)
}

// VendorDetail is a vendor together with its menus
type VendorDetail struct {
	Vendor Vendor `json:"vendor"`
	Menus  []Menu `json:"menus"`
}

// AuthResponse is returned by OTP verification
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OrderItemRequest is one line of an order submission
type OrderItemRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the body of an order submission
type OrderRequest struct {
	VendorID string             `json:"vendor_id"`
	SlotID   string             `json:"slot_id"`
	Items    []OrderItemRequest `json:"items"`
}

// StatusReport is the lightweight status view of an order
type StatusReport struct {
	Status        OrderStatus `json:"status"`
	EstimatedTime string      `json:"estimated_time,omitempty"`
}
