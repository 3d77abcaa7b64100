package security

import (
	"regexp"
	"strings"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// passwordSymbols is the closed set of symbols a password may (and must) use.
const passwordSymbols = "@$!%*#?&"

const (
	passwordMinLength = 6
	passwordMaxLength = 20
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// ValidateEmail reports whether the address has the local@domain.tld shape.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword reports whether the password satisfies the complexity
// policy: at least one lowercase letter, one uppercase letter, one digit and
// one symbol from the allowed set, 6-20 characters total, drawn only from
// those character classes.
func ValidatePassword(password string) bool {
	if len(password) < passwordMinLength || len(password) > passwordMaxLength {
		return false
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasLower && hasUpper && hasDigit && hasSymbol
}

// PasswordStrength returns the zxcvbn score (0-4) for the password. The score
// is advisory; it never gates validation, but registration logs it so weak
// yet policy-compliant passwords remain observable.
func PasswordStrength(password string, userInputs ...string) int {
	return zxcvbn.PasswordStrength(password, userInputs).Score
}
