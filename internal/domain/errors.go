package domain

import "errors"

// MaxAmount is the largest RP amount a single command may move.
const MaxAmount = 1_000_000

// Domain errors.
var (
	ErrBalanceNotFound    = errors.New("no RP recorded for this user")
	ErrHistoricalNotFound = errors.New("no historical RP recorded for this user")
	ErrInvalidAmount      = errors.New("amount must be between 1 and MaxAmount")
	ErrBalanceOverflow    = errors.New("RP balance would exceed the storable maximum")
	ErrNotWhitelisted     = errors.New("only whitelisted users can run this command")
	ErrGuildOnly          = errors.New("this command can only be used inside a server")
)

var codes = map[error]string{
	ErrBalanceNotFound:    "balance_not_found",
	ErrHistoricalNotFound: "historical_not_found",
	ErrInvalidAmount:      "invalid_amount",
	ErrBalanceOverflow:    "balance_overflow",
	ErrNotWhitelisted:     "not_whitelisted",
	ErrGuildOnly:          "guild_only",
}

// Code returns the stable code of the domain error wrapped in err, or "" when
// err is not a domain error.
func Code(err error) string {
	for target, code := range codes {
		if errors.Is(err, target) {
			return code
		}
	}
	return ""
}
