package user

// idPrefixLen is the length of the role prefix every identity ID starts with (e.g. "STU" in "STU123").
const idPrefixLen = 3

// prefixRoles maps ID prefixes to roles. Adding a role is a change to this table only.
var prefixRoles = map[string]Role{
	"STU": RoleStudent,
	"TCH": RoleTeacher,
	"PAR": RoleParent,
	"ADM": RoleAdmin,
	"EXM": RoleExamsOfficer,
	"ADO": RoleAdmissionOfficer,
	"FIN": RoleFinanceOfficer,
	"MED": RoleMediaOfficer,
}

// LookupRole derives a role from the ID prefix. ok is false when no prefix matches.
func LookupRole(id string) (role Role, ok bool) {
	id = CleanID(id)
	if len(id) < idPrefixLen {
		return "", false
	}
	role, ok = prefixRoles[id[:idPrefixLen]]
	return role, ok
}

// ResolveRole guesses the role of an ID from its prefix, falling back to RoleStudent.
//
// The result is a display hint only (e.g. to pre-fill the login form) and must never be used
// to grant access: authenticated roles always come from the stored User record.
func ResolveRole(id string) Role {
	if role, ok := LookupRole(id); ok {
		return role
	}
	return RoleStudent
}

// IDPrefix returns the ID prefix identities of the given role are provisioned with.
func IDPrefix(role Role) (string, bool) {
	for prefix, r := range prefixRoles {
		if r == role {
			return prefix, true
		}
	}
	return "", false
}
