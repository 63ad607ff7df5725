package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// dummyHash keeps bcrypt comparison on the login path even when the email is
// unknown, so response timing does not reveal account existence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService implements registration, login, refresh rotation and logout.
type AuthService struct {
	repos  Repositories
	jwt    *helpers.JWTManager
	logger *logrus.Logger
}

func NewAuthService(repos Repositories, jwt *helpers.JWTManager, logger *logrus.Logger) *AuthService {
	return &AuthService{repos: repos, jwt: jwt, logger: logger}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Age      *int
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResponse, error) {
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
	u, err := entity.NewUser(in.Name, email, password, valueobject.RoleUser, in.Age)
	if err != nil {
		return nil, err
	}
	err = dualWrite(
		func() error { return s.repos.UserDocs().Save(ctx, u) },
		func() error { return s.repos.UserRows().Save(ctx, u) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("register persist failed")
		return nil, err
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(u), Tokens: pair}, nil
}

// Login authenticates by email and password. Failures are indistinguishable
// between unknown email and wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	invalid := apperr.Unauthorized("INVALID_CREDENTIALS", "Invalid email or password")

	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, invalid
	}
	u, err := s.repos.UserDocs().FindByEmail(ctx, addr)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return nil, invalid
		}
		return nil, err
	}
	if !u.Password().Compare(password) {
		return nil, invalid
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(u), Tokens: pair}, nil
}

// Refresh rotates a refresh token: the old stored token is deleted from both
// stores and a brand-new pair is issued against the user's current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		// Expired and malformed collapse into one signal for the caller.
		return nil, apperr.Unauthorized("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	}
	stored, err := s.repos.RefreshTokenDocs().FindByToken(ctx, refreshToken)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("REFRESH_TOKEN_REVOKED", "Refresh token not found or has been revoked")
		}
		return nil, err
	}
	if stored.IsExpired(time.Now()) {
		s.deleteStoredToken(ctx, stored.ID())
		return nil, apperr.Unauthorized("REFRESH_TOKEN_EXPIRED", "Refresh token has expired")
	}
	if stored.UserID().String() != claims.UserID {
		return nil, apperr.Unauthorized("REFRESH_TOKEN_MISMATCH", "Refresh token does not belong to this user")
	}
	u, err := s.repos.UserDocs().FindByID(ctx, stored.UserID())
	if err != nil {
		return nil, err
	}
	// Rotation must not report success while the superseded token is still
	// resolvable in either store.
	if err := s.deleteStoredToken(ctx, stored.ID()); err != nil {
		return nil, err
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: toUserResponse(u), Tokens: pair}, nil
}

// LogoutAll revokes every refresh token owned by the user, on all devices.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	id, err := valueobject.UserIDFromString(userID)
	if err != nil {
		return err
	}
	return dualWrite(
		func() error { return s.repos.RefreshTokenDocs().DeleteAllForUser(ctx, id) },
		func() error { return s.repos.RefreshTokenRows().DeleteAllForUser(ctx, id) },
	)
}

// Logout revokes the single refresh token presented. Revoking an already-gone
// token is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return dualWrite(
		func() error { return ignoreNotFound(s.repos.RefreshTokenDocs().DeleteByToken(ctx, refreshToken)) },
		func() error { return ignoreNotFound(s.repos.RefreshTokenRows().DeleteByToken(ctx, refreshToken)) },
	)
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.jwt.GenerateAccessToken(u.ID().String(), u.Email().String(), u.Role().String())
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Error("generate access token failed")
		return TokenPair{}, apperr.Database("failed to generate access token", err)
	}
	refresh, rexp, err := s.jwt.GenerateRefreshToken(u.ID().String(), u.Email().String(), u.Role().String())
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Error("generate refresh token failed")
		return TokenPair{}, apperr.Database("failed to generate refresh token", err)
	}
	rt, err := entity.NewRefreshToken(refresh, u.ID(), rexp)
	if err != nil {
		return TokenPair{}, err
	}
	err = dualWrite(
		func() error { return s.repos.RefreshTokenDocs().Save(ctx, rt) },
		func() error { return s.repos.RefreshTokenRows().Save(ctx, rt) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("refresh token persist failed")
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}, nil
}

// deleteStoredToken removes a refresh token from both stores and returns the
// dual-write error. Branches that already fail the operation may ignore it;
// success paths must not.
func (s *AuthService) deleteStoredToken(ctx context.Context, id valueobject.RefreshTokenID) error {
	err := dualWrite(
		func() error { return ignoreNotFound(s.repos.RefreshTokenDocs().Delete(ctx, id)) },
		func() error { return ignoreNotFound(s.repos.RefreshTokenRows().Delete(ctx, id)) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("token_id", id.String()).Warn("refresh token purge failed")
	}
	return err
}

// ignoreNotFound treats a store-level "nothing deleted" as success. Used on
// deletes where the row may legitimately already be gone.
func ignoreNotFound(err error) error {
	if err == nil || apperr.IsKind(err, apperr.KindNotFound) {
		return nil
	}
	return err
}
