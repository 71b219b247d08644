package titleblock

// Resolve assigns each candidate fragment to at most one role using a
// two-phase greedy-then-positional strategy:
//
//  1. Candidates matching exactly one still-open role are committed first,
//     repeatedly, until no more single-match commitments are possible.
//     Distinctive values (scale, date, title and address text) fall out
//     here, as do the number/sheets placeholders "X" and "XX".
//  2. The leftover pool is, by template construction, candidates matching
//     both the number and the sheets pattern (real values of the two
//     fields are syntactically identical digit strings). With two such
//     candidates the first-encountered becomes the sheet number and the
//     second the sheet total, reflecting the template laying out "sheet
//     number" above "total sheets". A single leftover becomes the sheet
//     number, leaving the total unresolved. Three or more leave both
//     unresolved rather than guessing.
//
// This is a deliberate heuristic tuned to the fixed template, not a
// general constraint solver. Do not replace the positional tie-break with
// smarter inference: templates that reorder the two fields are out of
// scope, and the known limitation is documented here on purpose.
//
// Roles with no matching candidate at all are reported unresolved. The
// function is pure: it never touches the drawing.
func Resolve(candidates []Candidate, reg *Registry) (map[Role]int, []Role) {
	resolved := make(map[Role]int)

	matches := make([][]Role, len(candidates))
	for i, c := range candidates {
		matches[i] = reg.Match(c.Text)
	}
	taken := make([]bool, len(candidates))

	open := func(i int) []Role {
		var roles []Role
		for _, r := range matches[i] {
			if _, done := resolved[r]; !done {
				roles = append(roles, r)
			}
		}
		return roles
	}

	// Phase 1: greedy single-match commitment to a fixpoint. Committing a
	// role can turn another candidate's two-way match into a single match.
	for changed := true; changed; {
		changed = false
		for i := range candidates {
			if taken[i] {
				continue
			}
			roles := open(i)
			if len(roles) != 1 {
				continue
			}
			resolved[roles[0]] = i
			taken[i] = true
			changed = true
		}
	}

	// Phase 2: positional tie-break for the number/sheets pool.
	var pool []int
	for i := range candidates {
		if taken[i] {
			continue
		}
		roles := open(i)
		if len(roles) == 2 && roles[0] == RoleNumber && roles[1] == RoleSheets {
			pool = append(pool, i)
		}
	}
	switch len(pool) {
	case 1:
		resolved[RoleNumber] = pool[0]
	case 2:
		resolved[RoleNumber] = pool[0]
		resolved[RoleSheets] = pool[1]
	}

	var unresolved []Role
	for _, role := range AllRoles() {
		if _, ok := resolved[role]; !ok {
			unresolved = append(unresolved, role)
		}
	}
	return resolved, unresolved
}

// ResolveFields runs Resolve over the instance's candidates and records
// the outcome on the instance.
func (inst *Instance) ResolveFields(reg *Registry) []Role {
	inst.Resolved, inst.Unresolved = Resolve(inst.Candidates, reg)
	return inst.Unresolved
}
