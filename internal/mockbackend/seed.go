package mockbackend

import (
	"github.com/shopspring/decimal"

	"github.com/itsneelabh/campusbite/pkg/models"
)

// Seed loads a small campus: two vendors with menus, items and slots
func (s *Store) Seed() {
	s.AddVendor(models.Vendor{
		ID:                "chai-point",
		Name:              "Chai Point",
		Description:       "Tea, coffee and quick bites",
		Rating:            4.3,
		DeliveryTime:      "10-15 min",
		EstimatedDelivery: "15 min",
	})
	s.AddMenu(models.Menu{ID: "chai-point-beverages", Name: "Beverages", VendorID: "chai-point"},
		models.MenuItem{ID: "masala-chai", Name: "Masala Chai", Price: decimal.NewFromInt(20)},
		models.MenuItem{ID: "cold-coffee", Name: "Cold Coffee", Price: decimal.NewFromInt(60)},
	)
	s.AddMenu(models.Menu{ID: "chai-point-snacks", Name: "Snacks", VendorID: "chai-point"},
		models.MenuItem{ID: "samosa", Name: "Samosa", Price: decimal.NewFromInt(15)},
		models.MenuItem{ID: "vada-pav", Name: "Vada Pav", Price: decimal.RequireFromString("25.50")},
	)
	s.AddSlot("chai-point", models.TimeSlot{ID: "chai-point-1200", StartTime: "12:00", EndTime: "12:30", AvailableCapacity: 5})
	s.AddSlot("chai-point", models.TimeSlot{ID: "chai-point-1230", StartTime: "12:30", EndTime: "13:00", AvailableCapacity: 0})
	s.AddSlot("chai-point", models.TimeSlot{ID: "chai-point-1300", StartTime: "13:00", EndTime: "13:30", AvailableCapacity: 1})

	s.AddVendor(models.Vendor{
		ID:                "dosa-corner",
		Name:              "Dosa Corner",
		Description:       "South Indian breakfast all day",
		Rating:            4.6,
		DeliveryTime:      "20-25 min",
		EstimatedDelivery: "25 min",
	})
	s.AddMenu(models.Menu{ID: "dosa-corner-main", Name: "South Indian", VendorID: "dosa-corner"},
		models.MenuItem{ID: "masala-dosa", Name: "Masala Dosa", Price: decimal.NewFromInt(70)},
		models.MenuItem{ID: "idli", Name: "Idli (2 pcs)", Price: decimal.NewFromInt(40)},
	)
	s.AddSlot("dosa-corner", models.TimeSlot{ID: "dosa-corner-0800", StartTime: "08:00", EndTime: "08:30", AvailableCapacity: 10})
	s.AddSlot("dosa-corner", models.TimeSlot{ID: "dosa-corner-0830", StartTime: "08:30", EndTime: "09:00", AvailableCapacity: 10})
}
