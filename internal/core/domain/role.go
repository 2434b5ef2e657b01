// internal/core/domain/role.go
package domain

// UserRole is the role asserted by the identity collaborator's token.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleStaff    UserRole = "staff"
	RoleCustomer UserRole = "customer"
)

// ElevatedRoles may mutate inventory.
var ElevatedRoles = []UserRole{RoleAdmin, RoleStaff}
