// Package titleblock locates a marker-bearing title block inside a DXF
// drawing, assigns its text fragments to semantic fields, and rewrites
// the fields with computed values.
package titleblock

import (
	"fmt"
	"regexp"
)

// Role is one of the six semantic title block fields.
type Role int

const (
	RoleNumber Role = iota // sheet number within the set
	RoleSheets             // total number of sheets
	RoleTitle              // sheet title
	RoleAddress            // project address
	RoleScale              // drawing scale
	RoleDate               // sheet date
	roleCount
)

// String returns the role name as used in configuration keys.
func (r Role) String() string {
	switch r {
	case RoleNumber:
		return "number"
	case RoleSheets:
		return "sheets"
	case RoleTitle:
		return "title"
	case RoleAddress:
		return "address"
	case RoleScale:
		return "scale"
	case RoleDate:
		return "date"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// AllRoles lists every role in a fixed evaluation order.
func AllRoles() []Role {
	return []Role{RoleNumber, RoleSheets, RoleTitle, RoleAddress, RoleScale, RoleDate}
}

// FieldSpec describes one field as it comes out of configuration.
type FieldSpec struct {
	// Pattern recognizes both the template placeholder and real values
	// for the field, as an unanchored regular expression source.
	Pattern string
	// Update enables rewriting this field with a computed value.
	Update bool
	// Value is a static override for the computed value, where one
	// applies (date, scale, address, title).
	Value string
}

// FieldPattern is one compiled field matcher.
type FieldPattern struct {
	Role          Role
	Matcher       *regexp.Regexp
	UpdateEnabled bool
	StaticValue   string
}

// Registry holds exactly one compiled pattern per role.
type Registry struct {
	patterns [roleCount]FieldPattern
}

// NewRegistry compiles one FieldPattern per role from the given specs.
// Every role must be present with a valid pattern.
func NewRegistry(specs map[Role]FieldSpec) (*Registry, error) {
	reg := &Registry{}
	for _, role := range AllRoles() {
		spec, ok := specs[role]
		if !ok {
			return nil, fmt.Errorf("missing pattern for field %q", role)
		}
		matcher, err := regexp.Compile(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_pattern: %w", role, err)
		}
		reg.patterns[role] = FieldPattern{
			Role:          role,
			Matcher:       matcher,
			UpdateEnabled: spec.Update,
			StaticValue:   spec.Value,
		}
	}
	return reg, nil
}

// Pattern returns the compiled pattern for a role.
func (r *Registry) Pattern(role Role) FieldPattern {
	return r.patterns[role]
}

// Match evaluates text against every field matcher and returns the roles
// whose pattern matches, in AllRoles order. Placeholders and real values
// match alike; a fragment may legitimately match several roles (a bare
// digit string satisfies both the number and sheets patterns).
func (r *Registry) Match(text string) []Role {
	var roles []Role
	for _, role := range AllRoles() {
		if r.patterns[role].Matcher.MatchString(text) {
			roles = append(roles, role)
		}
	}
	return roles
}
