package user

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-portal/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrIDExists           = errors.New("a user with this id already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	// Repository is the credential store port. The authentication core only ever looks records up.
	Repository interface {
		// GetUserByID returns ErrNotFound when no record has the given (clean) id.
		GetUserByID(ctx context.Context, id string) (User, error)
	}

	// Writer is implemented by stores that support out-of-band provisioning.
	Writer interface {
		Repository
		CreateUser(ctx context.Context, usr User) (User, error)
		UpdatePassword(ctx context.Context, id string, hash []byte, updatedAt time.Time) error
	}

	// Service authenticates identities against a Repository.
	Service struct {
		repo      Repository
		dummyHash []byte
	}
)

func NewService(repo Repository) (*Service, error) {
	// unknown ids are compared against this hash so both failure paths cost one bcrypt comparison
	pwd := make([]byte, 32)
	if _, err := rand.Read(pwd); err != nil {
		return nil, errors.Wrap(err, "generating dummy password")
	}
	hash, err := bcrypt.GenerateFromPassword(pwd, bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing dummy password")
	}
	return &Service{repo: repo, dummyHash: hash}, nil
}

// Authenticate checks the (id, secret) pair.
// Unknown ids, wrong secrets and deactivated accounts all return ErrInvalidCredentials.
func (svc *Service) Authenticate(ctx context.Context, id, secret string) (Identity, error) {
	usr, err := svc.repo.GetUserByID(ctx, CleanID(id))
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Identity{}, errors.Wrap(err, "finding user by ID")
		}
		_ = bcrypt.CompareHashAndPassword(svc.dummyHash, []byte(secret))
		return Identity{}, ErrInvalidCredentials
	}
	if err = usr.CheckPassword(secret); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{SubjectID: usr.ID, Role: usr.Role}, nil
}

// Provisioner creates identity records and resets their passwords. Used by the admin app only.
type Provisioner struct {
	repo     Writer
	validate *validator.Validate
}

func NewProvisioner(repo Writer, validate *validator.Validate) *Provisioner {
	return &Provisioner{repo: repo, validate: validate}
}

func (p *Provisioner) Validate(ctx context.Context, nu *NewUser) error {
	nu.ID = CleanID(nu.ID)
	nu.Name = core.CleanString(nu.Name)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))

	if err := p.validate.Struct(nu); err != nil {
		return err
	}

	if _, err := p.repo.GetUserByID(ctx, nu.ID); err == nil {
		return core.NewValidationError(ErrIDExists, core.FieldError{Field: "id", Error: ErrIDExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return errors.Wrap(err, "checking id uniqueness")
	}
	return nil
}

func (p *Provisioner) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := p.Validate(ctx, &nu); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		ID:        nu.ID,
		Name:      nu.Name,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return p.repo.CreateUser(ctx, usr)
}

func (p *Provisioner) ResetPassword(ctx context.Context, id, pwd string) error {
	usr, err := p.repo.GetUserByID(ctx, CleanID(id))
	if err != nil {
		return err
	}

	data := ResetUserPassword{ID: usr.ID, Name: usr.Name, Password: pwd}
	if err = p.validate.Struct(data); err != nil {
		return err
	}

	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return p.repo.UpdatePassword(ctx, usr.ID, usr.PasswordHash, time.Now().UTC())
}

// ResetUserPassword carries the attributes the password policy checks a new password against.
type ResetUserPassword struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"required"`
}
