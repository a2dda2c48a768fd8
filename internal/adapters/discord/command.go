package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"rpbot/internal/domain"
	"rpbot/internal/ports/output"
)

const (
	cmdRP                    = "rp"
	cmdRevokeRP              = "revoke-rp"
	cmdLeaderboard           = "leaderboard"
	cmdHistoricalLeaderboard = "historical-leaderboard"
	cmdHistoricalRP          = "historical-rp"
	cmdSimulateWeeklyWipe    = "simulate-weekly-wipe"
	cmdRevokeHistoricalRP    = "revoke-historical-rp"
	cmdGiveRP                = "give-rp"
	cmdTakeRP                = "take-rp"

	optionAmount = "amount"
	optionUser   = "user"
)

// commandSpec describes one slash command before localisation.
type commandSpec struct {
	name    string
	amount  bool
	user    bool
	userReq bool
}

var commandSpecs = []commandSpec{
	{name: cmdRP, amount: true},
	{name: cmdRevokeRP, amount: true},
	{name: cmdLeaderboard},
	{name: cmdHistoricalLeaderboard},
	{name: cmdHistoricalRP},
	{name: cmdSimulateWeeklyWipe},
	{name: cmdRevokeHistoricalRP, amount: true, user: true},
	{name: cmdGiveRP, amount: true, user: true, userReq: true},
	{name: cmdTakeRP, amount: true, user: true, userReq: true},
}

// localisedLocales are the extra Discord locales the catalogues cover.
var localisedLocales = []discordgo.Locale{discordgo.French}

// descriptionKey maps "revoke-rp" to "command.revoke_rp".
func descriptionKey(name string) string {
	return "command." + strings.ReplaceAll(name, "-", "_")
}

// Commands builds the slash command definitions. Descriptions come from the
// catalogues in defaultLocale, with per-locale overrides for Discord clients.
func Commands(t output.T, defaultLocale string) []*discordgo.ApplicationCommand {
	dm := false
	minAmount := 1.0

	describe := func(key string) (string, *map[discordgo.Locale]string) {
		l := make(map[discordgo.Locale]string, len(localisedLocales))
		for _, locale := range localisedLocales {
			l[locale] = t.T(string(locale), key, nil)
		}
		return t.T(defaultLocale, key, nil), &l
	}

	cmds := make([]*discordgo.ApplicationCommand, 0, len(commandSpecs))
	for _, spec := range commandSpecs {
		desc, descL := describe(descriptionKey(spec.name))
		cmd := &discordgo.ApplicationCommand{
			Name:                     spec.name,
			Description:              desc,
			DescriptionLocalizations: descL,
			DMPermission:             &dm,
		}
		// Required options must precede optional ones.
		if spec.user && spec.userReq {
			cmd.Options = append(cmd.Options, userOption(describe, true))
		}
		if spec.amount {
			d, dl := describe("command.option.amount")
			cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
				Type:                     discordgo.ApplicationCommandOptionInteger,
				Name:                     optionAmount,
				Description:              d,
				DescriptionLocalizations: *dl,
				Required:                 true,
				MinValue:                 &minAmount,
				MaxValue:                 domain.MaxAmount,
			})
		}
		if spec.user && !spec.userReq {
			cmd.Options = append(cmd.Options, userOption(describe, false))
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func userOption(describe func(string) (string, *map[discordgo.Locale]string), required bool) *discordgo.ApplicationCommandOption {
	d, dl := describe("command.option.user")
	return &discordgo.ApplicationCommandOption{
		Type:                     discordgo.ApplicationCommandOptionUser,
		Name:                     optionUser,
		Description:              d,
		DescriptionLocalizations: *dl,
		Required:                 required,
	}
}
