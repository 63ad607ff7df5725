package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/valueobject"
	"github.com/oksasatya/user-account-service/pkg/apperr"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

const rawResetTokenBytes = 32

// PasswordResetService implements the reset-request/reset flow. Reset tokens
// are stored hashed; the raw token exists only in the request response.
type PasswordResetService struct {
	repos  Repositories
	ttl    time.Duration
	logger *logrus.Logger
}

func NewPasswordResetService(repos Repositories, ttl time.Duration, logger *logrus.Logger) *PasswordResetService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &PasswordResetService{repos: repos, ttl: ttl, logger: logger}
}

// Request issues a new reset token for the account, superseding any prior
// ones. An unknown email yields an empty result, never an error: the caller
// cannot probe which addresses exist.
func (s *PasswordResetService) Request(ctx context.Context, email string) (*ResetRequestResult, error) {
	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.repos.UserDocs().FindByEmail(ctx, addr)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return &ResetRequestResult{}, nil
		}
		return nil, err
	}

	// At most one live reset token per user.
	err = dualWrite(
		func() error { return s.repos.ResetTokenDocs().DeleteAllForUser(ctx, u.ID()) },
		func() error { return s.repos.ResetTokenRows().DeleteAllForUser(ctx, u.ID()) },
	)
	if err != nil {
		return nil, err
	}

	raw, err := helpers.GenerateOpaqueToken(rawResetTokenBytes)
	if err != nil {
		return nil, apperr.Database("failed to generate reset token", err)
	}
	token, err := entity.NewPasswordResetToken(helpers.HashToken(raw), u.ID(), time.Now().Add(s.ttl))
	if err != nil {
		return nil, err
	}
	err = dualWrite(
		func() error { return s.repos.ResetTokenDocs().Save(ctx, token) },
		func() error { return s.repos.ResetTokenRows().Save(ctx, token) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("reset token persist failed")
		return nil, err
	}
	expiry := token.ExpiresAt()
	return &ResetRequestResult{Token: &raw, ExpiresAt: &expiry}, nil
}

// Reset consumes a raw token and sets the new password. This is the one flow
// that tolerates the relational mirror as a read fallback: the document
// store's purge or replication timing can leave the token or user record
// ambiguous between request and reset.
func (s *PasswordResetService) Reset(ctx context.Context, rawToken, newPassword string) error {
	hash := helpers.HashToken(rawToken)
	token, err := s.findToken(ctx, hash)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return apperr.Unauthorized("INVALID_RESET_TOKEN", "Invalid or expired reset token")
		}
		return err
	}
	if token.IsExpired(time.Now()) {
		s.deleteToken(ctx, token.ID())
		return apperr.Unauthorized("RESET_TOKEN_EXPIRED", "Invalid or expired reset token")
	}

	u, err := s.findUser(ctx, token.UserID())
	if err != nil {
		// The token is consumed even when the account is gone.
		s.deleteToken(ctx, token.ID())
		return err
	}

	password, err := valueobject.NewPassword(newPassword)
	if err != nil {
		return err
	}
	u.ChangePassword(password)
	err = dualWrite(
		func() error { return s.repos.UserDocs().Update(ctx, u) },
		func() error { return s.repos.UserRows().Update(ctx, u) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID().String()).Warn("password update persist failed")
		return err
	}
	// The reset only counts as done once the token is unusable in both stores.
	return s.deleteToken(ctx, token.ID())
}

func (s *PasswordResetService) findToken(ctx context.Context, hash string) (*entity.PasswordResetToken, error) {
	token, err := s.repos.ResetTokenDocs().FindByTokenHash(ctx, hash)
	if err == nil {
		return token, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	return s.repos.ResetTokenRows().FindByTokenHash(ctx, hash)
}

func (s *PasswordResetService) findUser(ctx context.Context, id valueobject.UserID) (*entity.User, error) {
	u, err := s.repos.UserDocs().FindByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	return s.repos.UserRows().FindByID(ctx, id)
}

// deleteToken consumes a reset token in both stores and returns the
// dual-write error. Branches that already fail the operation may ignore it;
// success paths must not.
func (s *PasswordResetService) deleteToken(ctx context.Context, id valueobject.PasswordResetTokenID) error {
	err := dualWrite(
		func() error { return ignoreNotFound(s.repos.ResetTokenDocs().Delete(ctx, id)) },
		func() error { return ignoreNotFound(s.repos.ResetTokenRows().Delete(ctx, id)) },
	)
	if err != nil {
		s.logger.WithError(err).WithField("token_id", id.String()).Warn("reset token purge failed")
	}
	return err
}
