// Package policy is the single authorization gate for the application.
// Every mutating or sensitive-read operation consults one declarative table
// keyed by (action, role) instead of scattering role checks per endpoint.
package policy

import "doorstep-clean/internal/models"

// Actor is the authenticated identity extracted from the request token.
type Actor struct {
	ID    string
	Email string
	Role  string
	Name  string
}

// Action names an operation guarded by the table.
type Action string

const (
	OrderRead        Action = "order.read"
	OrderUpdate      Action = "order.update"
	TaskRead         Action = "task.read"
	TaskCreate       Action = "task.create"
	TaskUpdate       Action = "task.update"
	InvoiceRead      Action = "invoice.read"
	InvoiceCreate    Action = "invoice.create"
	UserManage       Action = "user.manage"
	CatalogWrite     Action = "catalog.write"
	NotificationRead Action = "notification.read"
	ReportRead       Action = "report.read"
)

// Scope is how far a role's permission reaches for an action.
type Scope int

const (
	// ScopeNone denies the action outright.
	ScopeNone Scope = iota
	// ScopeOwner allows only resources whose customer email matches the actor.
	ScopeOwner
	// ScopeAssigned allows only resources assigned to the actor.
	ScopeAssigned
	// ScopeAny allows every resource.
	ScopeAny
)

// Resource carries the ownership links a scoped rule needs. Services build it
// from the entity after the minimal existence lookup; nothing else is read
// before the decision.
type Resource struct {
	OwnerEmail    string
	AssignedStaff string
	AssignedRider string
}

var rules = map[Action]map[string]Scope{
	OrderRead: {
		models.RoleAdmin:    ScopeAny,
		models.RoleStaff:    ScopeAssigned,
		models.RoleRider:    ScopeAssigned,
		models.RoleCustomer: ScopeOwner,
	},
	OrderUpdate: {
		models.RoleAdmin: ScopeAny,
		models.RoleStaff: ScopeAssigned,
		models.RoleRider: ScopeAssigned,
	},
	TaskRead: {
		models.RoleAdmin: ScopeAny,
		models.RoleRider: ScopeAssigned,
	},
	TaskCreate: {
		models.RoleAdmin: ScopeAny,
	},
	TaskUpdate: {
		models.RoleAdmin: ScopeAny,
		models.RoleRider: ScopeAssigned,
	},
	InvoiceRead:      {models.RoleAdmin: ScopeAny},
	InvoiceCreate:    {models.RoleAdmin: ScopeAny},
	UserManage:       {models.RoleAdmin: ScopeAny},
	CatalogWrite:     {models.RoleAdmin: ScopeAny},
	NotificationRead: {models.RoleAdmin: ScopeAny},
	ReportRead:       {models.RoleAdmin: ScopeAny},
}

// ScopeFor returns the actor's reach for an action. Services use it to build
// list filters (a rider listing tasks gets an assigned-only filter).
func ScopeFor(actor Actor, action Action) Scope {
	byRole, ok := rules[action]
	if !ok {
		return ScopeNone
	}
	scope, ok := byRole[actor.Role]
	if !ok {
		return ScopeNone
	}
	return scope
}

// Allow decides whether the actor may perform action on the resource.
// Pure function, no side effects.
func Allow(actor Actor, action Action, res Resource) bool {
	switch ScopeFor(actor, action) {
	case ScopeAny:
		return true
	case ScopeAssigned:
		switch actor.Role {
		case models.RoleStaff:
			return res.AssignedStaff != "" && res.AssignedStaff == actor.ID
		case models.RoleRider:
			return res.AssignedRider != "" && res.AssignedRider == actor.ID
		}
		return false
	case ScopeOwner:
		return actor.Email != "" && res.OwnerEmail == actor.Email
	default:
		return false
	}
}
