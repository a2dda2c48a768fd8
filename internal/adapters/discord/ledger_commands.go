package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"rpbot/internal/domain"
	pkgdiscord "rpbot/pkg/discord"
)

const commandTimeout = 10 * time.Second

// invocation is the part of an interaction a command needs.
type invocation struct {
	command string
	guildID string
	userID  string
	locale  string
	options []*discordgo.ApplicationCommandInteractionDataOption
	members memberSource
}

// reply is either a public embed or an ephemeral error message.
type reply struct {
	embed   *discordgo.MessageEmbed
	content string
}

func (r reply) failed() bool { return r.embed == nil }

type commandFunc func(ctx context.Context, inv invocation) reply

// deferredCommands may look members up over REST, so they acknowledge the
// interaction first and edit the reply in afterwards.
var deferredCommands = map[string]bool{
	cmdLeaderboard:           true,
	cmdHistoricalLeaderboard: true,
}

// HandleCommand dispatches a slash command and answers the interaction.
func (h *Handler) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if _, ok := h.commands[data.Name]; !ok {
		log.Warn().Str("command", data.Name).Msg("⚠️ Unknown command")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	inv := invocation{
		command: data.Name,
		guildID: i.GuildID,
		userID:  interactionUserID(i.Interaction),
		locale:  h.localeOf(i.Locale),
		options: data.Options,
		members: sessionMembers(ctx, s),
	}

	deferred := deferredCommands[data.Name] && deferResponse(s, i.Interaction)

	r, _ := h.execute(ctx, inv)
	switch {
	case deferred && r.failed():
		replaceWithEphemeral(s, i.Interaction, r.content)
	case deferred:
		editEmbed(s, i.Interaction, r.embed)
	case r.failed():
		respondEphemeral(s, i.Interaction, r.content)
	default:
		respondEmbed(s, i.Interaction, r.embed)
	}
}

// execute runs the command and records its outcome. ok is false for names
// that are not registered.
func (h *Handler) execute(ctx context.Context, inv invocation) (reply, bool) {
	fn, ok := h.commands[inv.command]
	if !ok {
		return reply{}, false
	}
	r := fn(ctx, inv)
	status := "ok"
	if r.failed() {
		status = "error"
	}
	if h.metrics != nil {
		h.metrics.Command(inv.command, status)
	}
	return r, true
}

func (h *Handler) localeOf(l discordgo.Locale) string {
	if l == "" {
		return h.locale
	}
	return string(l)
}

func (h *Handler) fail(inv invocation, err error) reply {
	if domain.Code(err) == "" {
		log.Error().Err(err).
			Str("command", inv.command).
			Str("guild", inv.guildID).
			Str("user", inv.userID).
			Msg("❌ Command failed")
	}
	return reply{content: pkgdiscord.DomainErrorMessage(h.translator, inv.locale, err)}
}

func embedReply(e *discordgo.MessageEmbed) reply {
	return reply{embed: e}
}

func (h *Handler) addRP(ctx context.Context, inv invocation) reply {
	amount, _ := pkgdiscord.IntOption(inv.options, optionAmount)
	b, err := h.ledger.AddRP(ctx, inv.guildID, inv.userID, amount)
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.RPAddedEmbed(h.translator, inv.locale, amount, b))
}

func (h *Handler) revokeRP(ctx context.Context, inv invocation) reply {
	amount, _ := pkgdiscord.IntOption(inv.options, optionAmount)
	b, err := h.ledger.RevokeRP(ctx, inv.guildID, inv.userID, amount)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return embedReply(pkgdiscord.NoRPEmbed(h.translator, inv.locale, ""))
	}
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.RPRevokedEmbed(h.translator, inv.locale, amount, b))
}

func (h *Handler) leaderboard(ctx context.Context, inv invocation) reply {
	balances, err := h.ledger.Leaderboard(ctx, inv.guildID)
	if err != nil {
		return h.fail(inv, err)
	}
	rows := leaderboardRows(inv.members, inv.guildID, balances, false)
	return embedReply(pkgdiscord.LeaderboardEmbed(h.translator, inv.locale, rows, false))
}

func (h *Handler) historicalLeaderboard(ctx context.Context, inv invocation) reply {
	balances, err := h.ledger.HistoricalLeaderboard(ctx, inv.guildID)
	if err != nil {
		return h.fail(inv, err)
	}
	rows := leaderboardRows(inv.members, inv.guildID, balances, true)
	return embedReply(pkgdiscord.LeaderboardEmbed(h.translator, inv.locale, rows, true))
}

func (h *Handler) historicalRP(ctx context.Context, inv invocation) reply {
	b, err := h.ledger.Totals(ctx, inv.guildID, inv.userID)
	if err != nil {
		return h.fail(inv, err)
	}
	var next time.Time
	if h.nextReset != nil {
		next = h.nextReset(time.Now())
	}
	return embedReply(pkgdiscord.TotalsEmbed(h.translator, inv.locale, b, next))
}

func (h *Handler) simulateWeeklyWipe(ctx context.Context, inv invocation) reply {
	r, err := h.ledger.SimulateWeeklyWipe(ctx, inv.guildID, inv.userID)
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.WipeEmbed(h.translator, inv.locale, r))
}

// revokeHistoricalRP targets the caller unless a user is given.
func (h *Handler) revokeHistoricalRP(ctx context.Context, inv invocation) reply {
	amount, _ := pkgdiscord.IntOption(inv.options, optionAmount)
	target := pkgdiscord.UserIDOption(inv.options, optionUser)
	if target == "" {
		target = inv.userID
	}
	b, err := h.ledger.RevokeHistoricalRP(ctx, inv.guildID, inv.userID, target, amount)
	if errors.Is(err, domain.ErrHistoricalNotFound) {
		return embedReply(pkgdiscord.NoHistoricalEmbed(h.translator, inv.locale, target))
	}
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.HistoricalRevokedEmbed(h.translator, inv.locale, amount, b))
}

func (h *Handler) giveRP(ctx context.Context, inv invocation) reply {
	amount, _ := pkgdiscord.IntOption(inv.options, optionAmount)
	target := pkgdiscord.UserIDOption(inv.options, optionUser)
	b, err := h.ledger.GrantRP(ctx, inv.guildID, inv.userID, target, amount)
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.RPGrantedEmbed(h.translator, inv.locale, amount, b))
}

func (h *Handler) takeRP(ctx context.Context, inv invocation) reply {
	amount, _ := pkgdiscord.IntOption(inv.options, optionAmount)
	target := pkgdiscord.UserIDOption(inv.options, optionUser)
	b, err := h.ledger.TakeRP(ctx, inv.guildID, inv.userID, target, amount)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return embedReply(pkgdiscord.NoRPEmbed(h.translator, inv.locale, target))
	}
	if err != nil {
		return h.fail(inv, err)
	}
	return embedReply(pkgdiscord.RPTakenEmbed(h.translator, inv.locale, amount, b))
}
