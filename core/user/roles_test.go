package user

import "testing"

func TestResolveRole(t *testing.T) {
	tests := []struct {
		id   string
		want Role
	}{
		{id: "STU999", want: RoleStudent},
		{id: "TCH001", want: RoleTeacher},
		{id: "PAR042", want: RoleParent},
		{id: "ADM777", want: RoleAdmin},
		{id: "EXM100", want: RoleExamsOfficer},
		{id: "ADO100", want: RoleAdmissionOfficer},
		{id: "FIN100", want: RoleFinanceOfficer},
		{id: "MED100", want: RoleMediaOfficer},
		{id: " adm777 ", want: RoleAdmin},
		{id: "XYZ000", want: RoleStudent}, // fallback
		{id: "AD", want: RoleStudent},
		{id: "", want: RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ResolveRole(tt.id); got != tt.want {
				t.Errorf("ResolveRole(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestLookupRole(t *testing.T) {
	if _, ok := LookupRole("XYZ000"); ok {
		t.Error("LookupRole(XYZ000) matched an unknown prefix")
	}
	if role, ok := LookupRole("FIN001"); !ok || role != RoleFinanceOfficer {
		t.Errorf("LookupRole(FIN001) = %v, %v; want %v, true", role, ok, RoleFinanceOfficer)
	}
}

func TestPrefixTableCoversAllRoles(t *testing.T) {
	for _, role := range AllRoles {
		prefix, ok := IDPrefix(role)
		if !ok {
			t.Errorf("no id prefix for role %v", role)
			continue
		}
		if got, _ := LookupRole(prefix + "1"); got != role {
			t.Errorf("LookupRole(%s1) = %v, want %v", prefix, got, role)
		}
	}
}
