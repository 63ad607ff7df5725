package valueobject

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/user-account-service/pkg/apperr"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	bcryptCost        = 10
)

// Password holds only the bcrypt hash of a password. The plain text is never
// retained past construction or comparison.
type Password struct {
	hash string
}

// NewPassword validates strength and hashes the plain text.
func NewPassword(plain string) (Password, error) {
	if err := validateStrength(plain); err != nil {
		return Password{}, err
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return Password{}, apperr.Database("failed to hash password", err)
	}
	return Password{hash: string(b)}, nil
}

// PasswordFromHash reconstructs a Password from a stored hash. No strength
// check is applied; the hash was validated when first created.
func PasswordFromHash(hash string) (Password, error) {
	if hash == "" {
		return Password{}, apperr.Validation("INVALID_PASSWORD_HASH", "password hash must not be empty")
	}
	return Password{hash: hash}, nil
}

// Compare reports whether plain matches the stored hash.
func (p Password) Compare(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.hash), []byte(plain)) == nil
}

func (p Password) Hash() string { return p.hash }

func validateStrength(plain string) error {
	if len(plain) < minPasswordLength || len(plain) > maxPasswordLength {
		return apperr.Validationf("WEAK_PASSWORD", "Password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range plain {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	missing := make([]string, 0, 4)
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "a digit")
	}
	if !hasSymbol {
		missing = append(missing, "a symbol")
	}
	if len(missing) > 0 {
		return apperr.Validation("WEAK_PASSWORD", "Password must contain "+strings.Join(missing, ", "))
	}
	return nil
}
