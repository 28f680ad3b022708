package database

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/user"
)

const demoNumber = "123"

// DemoUsers returns one active identity per role: `<PREFIX>123` with the password `<role>123`
// (e.g. STU123 / student123).
func DemoUsers() ([]user.User, error) {
	now := time.Now().UTC()
	users := make([]user.User, 0, len(user.Roles))
	for _, info := range user.Roles {
		prefix, ok := user.IDPrefix(info.Value)
		if !ok {
			return nil, errors.Errorf("no id prefix for role %q", info.Value)
		}
		usr := user.User{
			ID:        prefix + demoNumber,
			Name:      "Demo " + info.Name,
			Role:      info.Value,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := usr.SetPassword(string(info.Value) + demoNumber); err != nil {
			return nil, errors.Wrap(err, "hashing demo password")
		}
		users = append(users, usr)
	}
	return users, nil
}

// SeedDemo stores the demo identities, skipping IDs that already exist.
// Seeding writes through the repository directly: demo passwords do not satisfy the password policy.
func SeedDemo(ctx context.Context, repo user.Writer) (int, error) {
	users, err := DemoUsers()
	if err != nil {
		return 0, err
	}

	created := 0
	for _, usr := range users {
		if _, err = repo.GetUserByID(ctx, usr.ID); err == nil {
			continue
		} else if errors.Cause(err) != user.ErrNotFound {
			return created, errors.Wrapf(err, "looking up %s", usr.ID)
		}
		if _, err = repo.CreateUser(ctx, usr); err != nil {
			return created, errors.Wrapf(err, "creating %s", usr.ID)
		}
		created++
	}
	return created, nil
}
