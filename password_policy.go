package authflow

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MinPasswordLength is shared by the password policy and the mock sign in check
const MinPasswordLength = 8

var (
	reUpper  = regexp.MustCompile(`[A-Z]`)
	reLower  = regexp.MustCompile(`[a-z]`)
	reDigit  = regexp.MustCompile(`[0-9]`)
	reSymbol = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// PasswordRules are the ozzo rules applied to new secrets
func PasswordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(MinPasswordLength, 0).Error("must be at least 8 characters long"),
		validation.Match(reUpper).Error("must contain an uppercase letter"),
		validation.Match(reLower).Error("must contain a lowercase letter"),
		validation.Match(reDigit).Error("must contain a digit"),
		validation.Match(reSymbol).Error("must contain a symbol"),
	}
}

// ValidatePasswordStrength returns a WeakPassword error when secret does not
// satisfy the policy.
func ValidatePasswordStrength(secret string) error {
	if err := validation.Validate(secret, PasswordRules()...); err != nil {
		return WeakPassword(err)
	}
	return nil
}
