package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is one of the closed set of portal roles. Each role owns exactly one dashboard.
type Role string

// Roles
const (
	RoleStudent          Role = "student"
	RoleTeacher          Role = "teacher"
	RoleParent           Role = "parent"
	RoleAdmin            Role = "admin"
	RoleExamsOfficer     Role = "exams-officer"
	RoleAdmissionOfficer Role = "admission-officer"
	RoleFinanceOfficer   Role = "finance-officer"
	RoleMediaOfficer     Role = "media-officer"
)

var (
	AllRoles = []Role{
		RoleStudent,
		RoleTeacher,
		RoleParent,
		RoleAdmin,
		RoleExamsOfficer,
		RoleAdmissionOfficer,
		RoleFinanceOfficer,
		RoleMediaOfficer,
	}

	Roles = []RoleInfo{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Exams Officer", Value: RoleExamsOfficer},
		{Name: "Admission Officer", Value: RoleAdmissionOfficer},
		{Name: "Finance Officer", Value: RoleFinanceOfficer},
		{Name: "Media Officer", Value: RoleMediaOfficer},
	}
)

type RoleInfo struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is an identity record. Records are provisioned out-of-band (see apps/admin);
// the authentication core only reads them.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// Identity is the outcome of a successful authentication.
type Identity struct {
	SubjectID string
	Role      Role
}

// NewUser contains information needed to provision a new User.
type NewUser struct {
	ID              string `json:"id" validate:"required,userid"`
	Name            string `json:"name" validate:"required,alphanum_"`
	Role            Role   `json:"role" validate:"required,role"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// CleanID normalizes an identity ID: IDs are upper-case, surrounding whitespace is ignored.
func CleanID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
