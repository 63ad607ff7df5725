package application

import (
	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

// Repositories is the consumer-side view of the repository factory. Docs
// repositories are the document-store read-of-record; Rows repositories are
// the relational write-behind mirror, written second and never read by
// application logic (the reset-password flow's mirror fallback is the single
// documented exception).
type Repositories interface {
	UserDocs() repository.UserRepository
	UserRows() repository.UserRepository
	RefreshTokenDocs() repository.RefreshTokenRepository
	RefreshTokenRows() repository.RefreshTokenRepository
	ResetTokenDocs() repository.PasswordResetTokenRepository
	ResetTokenRows() repository.PasswordResetTokenRepository
}
