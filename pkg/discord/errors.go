package discord

import (
	"rpbot/internal/domain"
	"rpbot/internal/ports/output"
)

// DomainErrorMessage resolves err to a user-facing message. Errors that are
// not domain errors get the generic message.
func DomainErrorMessage(t output.T, locale string, err error) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return t.T(locale, "error."+code, map[string]any{"Max": domain.MaxAmount})
	}
	return t.T(locale, "error.generic", nil)
}
