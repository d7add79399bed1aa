package models

import (
	"github.com/google/uuid"
)

// Permission codes checked by the route middleware.
const (
	PermAll                = "*"
	PermAppointmentsRead   = "appointments.read"
	PermAppointmentsManage = "appointments.manage"
	PermBillingManage      = "billing.manage"
	PermCustomersRead      = "customers.read"
	PermCustomersManage    = "customers.manage"
	PermLoyaltyManage      = "loyalty.manage"
	PermStylistsManage     = "stylists.manage"
	PermCatalogManage      = "catalog.manage"
	PermInventoryManage    = "inventory.manage"
	PermReportsRead        = "reports.read"
	PermUsersManage        = "users.manage"
	PermSettingsManage     = "settings.manage"
)

// Permissions is the catalog seeded on startup.
var Permissions = map[string]string{
	PermAll:                "Full access",
	PermAppointmentsRead:   "View appointments",
	PermAppointmentsManage: "Schedule, check in and cancel appointments",
	PermBillingManage:      "Bill and take payment for appointments",
	PermCustomersRead:      "View customers",
	PermCustomersManage:    "Create, edit and delete customers",
	PermLoyaltyManage:      "Adjust customer loyalty points",
	PermStylistsManage:     "Manage stylists and incentives",
	PermCatalogManage:      "Manage services and products",
	PermInventoryManage:    "Receive procurements and adjust stock",
	PermReportsRead:        "View dashboard, reports and sales",
	PermUsersManage:        "Manage users and roles",
	PermSettingsManage:     "Manage salon settings and reminders",
}

// System role names created for every salon.
const (
	RoleOwner        = "owner"
	RoleManager      = "manager"
	RoleReceptionist = "receptionist"
	RoleStylist      = "stylist"
)

// DefaultRolePermissions maps each system role to its permission codes.
var DefaultRolePermissions = map[string][]string{
	RoleOwner: {PermAll},
	RoleManager: {
		PermAppointmentsRead, PermAppointmentsManage, PermBillingManage,
		PermCustomersRead, PermCustomersManage, PermLoyaltyManage,
		PermStylistsManage, PermCatalogManage, PermInventoryManage, PermReportsRead,
	},
	RoleReceptionist: {
		PermAppointmentsRead, PermAppointmentsManage, PermBillingManage,
		PermCustomersRead, PermCustomersManage,
	},
	RoleStylist: {PermAppointmentsRead, PermCustomersRead},
}

type Permission struct {
	Code        string `gorm:"primaryKey;size:64" json:"code"`
	Description string `json:"description"`
}

type Role struct {
	Base
	SalonID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_role_salon_name,priority:1" json:"salonId"`
	Name        string       `gorm:"not null;size:64;uniqueIndex:idx_role_salon_name,priority:2" json:"name"`
	Description string       `json:"description"`
	IsSystem    bool         `gorm:"default:false" json:"isSystem"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
}

// Codes flattens the role's permissions for token claims.
func (r Role) Codes() []string {
	codes := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		codes = append(codes, p.Code)
	}
	return codes
}
