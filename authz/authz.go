// Package authz contains the caller identity passed to resource handlers, and
// the role-based access control rules evaluated when authorizing calls.
package authz

import (
	"fmt"
	"maps"

	"github.com/zpatrick/rbac"

	"go.hackfix.me/crudkit/crud"
)

// Actions checked by resource implementations.
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Built-in role names.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

var builtinRoles = map[string]rbac.Role{
	RoleAdmin: {
		RoleID:      RoleAdmin,
		Permissions: []rbac.Permission{rbac.NewGlobPermission("*", "*")},
	},
	RoleOperator: {
		RoleID: RoleOperator,
		Permissions: []rbac.Permission{
			rbac.NewGlobPermission(ActionRead, "*"),
			rbac.NewGlobPermission(ActionCreate, "*"),
			rbac.NewGlobPermission(ActionUpdate, "*"),
		},
	},
	RoleViewer: {
		RoleID:      RoleViewer,
		Permissions: []rbac.Permission{rbac.NewGlobPermission(ActionRead, "*")},
	},
}

// RolesFromNames returns the built-in roles with the given names.
func RolesFromNames(names ...string) (rbac.Roles, error) {
	roles := make(rbac.Roles, 0, len(names))
	for _, name := range names {
		role, ok := builtinRoles[name]
		if !ok {
			return nil, fmt.Errorf("unknown role '%s'", name)
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// Caller is the identity and ambient request data of a resource handler call.
// Its fields are merged into the resolved handler options with the highest
// precedence.
type Caller struct {
	User  string
	Roles rbac.Roles
	// Extra are additional fields exposed as options, e.g. the request ID.
	Extra crud.Options
}

var _ crud.Caller = (*Caller)(nil)

// NewCaller returns a new Caller for the user with the given role names.
func NewCaller(user string, roleNames ...string) (*Caller, error) {
	roles, err := RolesFromNames(roleNames...)
	if err != nil {
		return nil, err
	}
	return &Caller{User: user, Roles: roles, Extra: crud.Options{}}, nil
}

// Fields implements the crud.Caller interface.
func (c *Caller) Fields() crud.Options {
	if c == nil {
		return crud.Options{}
	}
	fields := maps.Clone(c.Extra)
	if fields == nil {
		fields = crud.Options{}
	}
	fields["user"] = c.User
	return fields
}

// Can reports whether the caller is allowed to perform action on target.
func (c *Caller) Can(action, target string) (bool, error) {
	if c == nil {
		return false, nil
	}
	allowed, err := c.Roles.Can(action, target)
	if err != nil {
		return false, fmt.Errorf("failed evaluating permissions of user '%s': %w", c.User, err)
	}
	return allowed, nil
}
