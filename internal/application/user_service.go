package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
)

// UserService implements the user-management use cases. Every mutation runs
// the dual-write policy: document store first, relational mirror second.
type UserService struct {
	repos  Repositories
	logger *logrus.Logger
}

func NewUserService(repos Repositories, logger *logrus.Logger) *UserService {
	return &UserService{repos: repos, logger: logger}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Age      *int
}

func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*UserResponse, error) {
	email, err := valueobject.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	exists, err := s.repos.UserDocs().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("EMAIL_TAKEN", "User with this email already exists")
	}
	password, err := valueobject.NewPassword(in.Password)
	if err != nil {
		return nil, err
	}
	roleStr := in.Role
	if roleStr == "" {
		roleStr = valueobject.RoleUser.String()
	}
	role, err := valueobject.NewRole(roleStr)
	if err != nil {
		return nil, err
	}
	u, err := entity.NewUser(in.Name, email, password, role, in.Age)
	if err != nil {
		return nil, err
	}
	err = dualWrite(
		func() error { return s.repos.UserDocs().Save(ctx, u) },
		func() error { return s.repos.UserRows().Save(ctx, u) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("user create persist failed")
		return nil, err
	}
	return toUserResponse(u), nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*UserResponse, error) {
	userID, err := valueobject.UserIDFromString(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repos.UserDocs().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

func (s *UserService) List(ctx context.Context) ([]*UserResponse, error) {
	users, err := s.repos.UserDocs().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	Age      *int
	AgeSet   bool // distinguishes "clear age" from "leave age alone"
}

// Update applies only the fields present in the input, re-validating each
// through the entity's mutation methods.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*UserResponse, error) {
	userID, err := valueobject.UserIDFromString(id)
	if err != nil {
		return nil, err
	}
	u, err := s.repos.UserDocs().FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := u.Rename(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		email, err := valueobject.NewEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		if !email.Equals(u.Email()) {
			taken, err := s.emailTakenByOther(ctx, email, u.ID())
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("EMAIL_TAKEN", "Email already taken by another user")
			}
			u.ChangeEmail(email)
		}
	}
	if in.AgeSet {
		if err := u.ChangeAge(in.Age); err != nil {
			return nil, err
		}
	}
	if in.Password != nil {
		password, err := valueobject.NewPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.ChangePassword(password)
	}
	if in.Role != nil {
		role, err := valueobject.NewRole(*in.Role)
		if err != nil {
			return nil, err
		}
		u.ChangeRole(role)
	}

	err = dualWrite(
		func() error { return s.repos.UserDocs().Update(ctx, u) },
		func() error { return s.repos.UserRows().Update(ctx, u) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("user update persist failed")
		return nil, err
	}
	return toUserResponse(u), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	userID, err := valueobject.UserIDFromString(id)
	if err != nil {
		return err
	}
	// Verify existence against the read store so deleting an unknown id is a
	// NotFound, not a silent no-op.
	if _, err := s.repos.UserDocs().FindByID(ctx, userID); err != nil {
		return err
	}
	err = dualWrite(
		func() error { return s.repos.UserDocs().Delete(ctx, userID) },
		func() error { return s.repos.UserRows().Delete(ctx, userID) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", id).Warn("user delete persist failed")
		return err
	}
	return nil
}

// emailTakenByOther checks the read store for another user holding the
// address.
func (s *UserService) emailTakenByOther(ctx context.Context, email valueobject.Email, selfID valueobject.UserID) (bool, error) {
	other, err := s.repos.UserDocs().FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	return other.ID() != selfID, nil
}
