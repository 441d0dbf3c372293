package enums

import "fmt"

// Role is the single workflow role a directory user holds.
type Role string

const (
	RoleEmployee    Role = "employee"
	RoleExecutive   Role = "executive"
	RoleChairman    Role = "chairman"
	RoleProcurement Role = "procurement"
	RoleSupplyChain Role = "supply_chain"
	RoleFinance     Role = "finance"
	RoleWarehouse   Role = "warehouse"
	RoleLogistics   Role = "logistics"
	RoleAdmin       Role = "admin"
)

var validRoles = []Role{
	RoleEmployee,
	RoleExecutive,
	RoleChairman,
	RoleProcurement,
	RoleSupplyChain,
	RoleFinance,
	RoleWarehouse,
	RoleLogistics,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (v Role) String() string {
	return string(v)
}

// IsValid reports whether the value is a known Role.
func (v Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// RoleRequester is a routing pseudo-role: it resolves to the requester named
// in an event payload rather than to every user holding a role.
const RoleRequester Role = "requester"
