package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

const (
	maxNameLength = 100
	minAge        = 0
	maxAge        = 150
)

// User is the aggregate root for the account domain. All fields are mutated
// through methods that re-validate their invariants and bump updatedAt.
type User struct {
	id        valueobject.UserID
	name      string
	email     valueobject.Email
	password  valueobject.Password
	role      valueobject.Role
	age       *int
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a user with a fresh identifier and validated attributes.
func NewUser(name string, email valueobject.Email, password valueobject.Password, role valueobject.Role, age *int) (*User, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if err := validateAge(age); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &User{
		id:        valueobject.NewUserID(),
		name:      name,
		email:     email,
		password:  password,
		role:      role,
		age:       age,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUser rebuilds a user from persisted, already-validated state.
func ReconstructUser(id valueobject.UserID, name string, email valueobject.Email, password valueobject.Password, role valueobject.Role, age *int, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		name:      name,
		email:     email,
		password:  password,
		role:      role,
		age:       age,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u *User) ID() valueobject.UserID         { return u.id }
func (u *User) Name() string                   { return u.name }
func (u *User) Email() valueobject.Email       { return u.email }
func (u *User) Password() valueobject.Password { return u.password }
func (u *User) Role() valueobject.Role         { return u.role }
func (u *User) Age() *int                      { return u.age }
func (u *User) CreatedAt() time.Time           { return u.createdAt }
func (u *User) UpdatedAt() time.Time           { return u.updatedAt }

func (u *User) Rename(name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	u.name = name
	u.touch()
	return nil
}

func (u *User) ChangeEmail(email valueobject.Email) {
	u.email = email
	u.touch()
}

func (u *User) ChangeAge(age *int) error {
	if err := validateAge(age); err != nil {
		return err
	}
	u.age = age
	u.touch()
	return nil
}

func (u *User) ChangePassword(password valueobject.Password) {
	u.password = password
	u.touch()
}

func (u *User) ChangeRole(role valueobject.Role) {
	u.role = role
	u.touch()
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC().Truncate(time.Millisecond)
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", apperr.Validation("INVALID_NAME", "Name must be between 1 and 100 characters")
	}
	return name, nil
}

func validateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < minAge || *age > maxAge {
		return apperr.Validation("INVALID_AGE", "Invalid age")
	}
	return nil
}
