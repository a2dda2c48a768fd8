package discord

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"rpbot/internal/domain/entities"
	"rpbot/internal/infrastructure/i18n"
)

const (
	guildID = "100000000000000001"
	alice   = "200000000000000001"
	bob     = "200000000000000002"
)

// fakeLedger returns canned results and records each call as
// "method guild actor target amount".
type fakeLedger struct {
	balance  entities.Balance
	balances []entities.Balance
	rollover *entities.Rollover
	err      error
	calls    []string
}

func (f *fakeLedger) call(method, guildID, actorID, targetID string, amount int64) {
	f.calls = append(f.calls, fmt.Sprintf("%s %s %s %s %d", method, guildID, actorID, targetID, amount))
}

func (f *fakeLedger) AddRP(_ context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	f.call("AddRP", guildID, userID, userID, amount)
	return f.balance, f.err
}

func (f *fakeLedger) RevokeRP(_ context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	f.call("RevokeRP", guildID, userID, userID, amount)
	return f.balance, f.err
}

func (f *fakeLedger) Totals(_ context.Context, guildID, userID string) (entities.Balance, error) {
	f.call("Totals", guildID, userID, userID, 0)
	return f.balance, f.err
}

func (f *fakeLedger) Leaderboard(_ context.Context, guildID string) ([]entities.Balance, error) {
	f.call("Leaderboard", guildID, "", "", 0)
	return f.balances, f.err
}

func (f *fakeLedger) HistoricalLeaderboard(_ context.Context, guildID string) ([]entities.Balance, error) {
	f.call("HistoricalLeaderboard", guildID, "", "", 0)
	return f.balances, f.err
}

func (f *fakeLedger) GrantRP(_ context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	f.call("GrantRP", guildID, actorID, targetID, amount)
	return f.balance, f.err
}

func (f *fakeLedger) TakeRP(_ context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	f.call("TakeRP", guildID, actorID, targetID, amount)
	return f.balance, f.err
}

func (f *fakeLedger) RevokeHistoricalRP(_ context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	f.call("RevokeHistoricalRP", guildID, actorID, targetID, amount)
	return f.balance, f.err
}

func (f *fakeLedger) SimulateWeeklyWipe(_ context.Context, guildID, actorID string) (*entities.Rollover, error) {
	f.call("SimulateWeeklyWipe", guildID, actorID, "", 0)
	return f.rollover, f.err
}

func (f *fakeLedger) WeeklyRollover(context.Context) ([]entities.Rollover, error) {
	f.call("WeeklyRollover", "", "", "", 0)
	return nil, f.err
}

func (f *fakeLedger) IsWhitelisted(string) bool { return true }

type commandCounter map[string]int

func (c commandCounter) Command(command, status string) { c[command+" "+status]++ }

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator("en")
	require.NoError(t, err)
	return tr
}

func amountOpt(v int64) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  optionAmount,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(v),
	}
}

func userOpt(id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  optionUser,
		Type:  discordgo.ApplicationCommandOptionUser,
		Value: id,
	}
}
