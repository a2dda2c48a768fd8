package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"rpbot/internal/domain"
	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
)

// Embed colours.
const (
	ColorGreen  = 0x2ECC71
	ColorRed    = 0xE74C3C
	ColorOrange = 0xE67E22
	ColorBlue   = 0x3498DB
	ColorPurple = 0x9B59B6
	ColorGold   = 0xF1C40F
)

func Mention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

func newEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
}

// RPAddedEmbed answers /rp.
func RPAddedEmbed(t output.T, locale string, amount int64, b entities.Balance) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.rp_added.title", nil),
		t.T(locale, "embed.rp_added.description", map[string]any{"Amount": amount, "Weekly": b.WeeklyRP}),
		ColorGreen,
	)
}

// RPRevokedEmbed answers /revoke-rp.
func RPRevokedEmbed(t output.T, locale string, amount int64, b entities.Balance) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.rp_revoked.title", nil),
		t.T(locale, "embed.rp_revoked.description", map[string]any{"Amount": amount, "Weekly": b.WeeklyRP}),
		ColorOrange,
	)
}

// NoRPEmbed is sent when there is no weekly RP to revoke. targetID is empty
// when the caller revokes from themselves.
func NoRPEmbed(t output.T, locale, targetID string) *discordgo.MessageEmbed {
	desc := t.T(locale, "embed.no_rp.description", nil)
	if targetID != "" {
		desc = t.T(locale, "embed.no_rp.target_description", map[string]any{"Target": Mention(targetID)})
	}
	return newEmbed(t.T(locale, "embed.no_rp.title", nil), desc, ColorRed)
}

func RPGrantedEmbed(t output.T, locale string, amount int64, b entities.Balance) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.rp_granted.title", nil),
		t.T(locale, "embed.rp_granted.description", map[string]any{"Amount": amount, "Target": Mention(b.UserID), "Weekly": b.WeeklyRP}),
		ColorGreen,
	)
}

func RPTakenEmbed(t output.T, locale string, amount int64, b entities.Balance) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.rp_taken.title", nil),
		t.T(locale, "embed.rp_taken.description", map[string]any{"Amount": amount, "Target": Mention(b.UserID), "Weekly": b.WeeklyRP}),
		ColorOrange,
	)
}

func HistoricalRevokedEmbed(t output.T, locale string, amount int64, b entities.Balance) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.historical_revoked.title", nil),
		t.T(locale, "embed.historical_revoked.description", map[string]any{"Amount": amount, "Target": Mention(b.UserID), "Historical": b.HistoricalRP}),
		ColorOrange,
	)
}

func NoHistoricalEmbed(t output.T, locale, targetID string) *discordgo.MessageEmbed {
	return newEmbed(
		t.T(locale, "embed.no_historical.title", nil),
		t.T(locale, "embed.no_historical.description", map[string]any{"Target": Mention(targetID)}),
		ColorRed,
	)
}

// LeaderboardRow is one ranked line; Name is already resolved for display.
type LeaderboardRow struct {
	Name string
	RP   int64
}

// LeaderboardEmbed lists rows in order. historical selects the all-time title.
func LeaderboardEmbed(t output.T, locale string, rows []LeaderboardRow, historical bool) *discordgo.MessageEmbed {
	if len(rows) == 0 {
		return newEmbed(
			t.T(locale, "embed.leaderboard.empty_title", nil),
			t.T(locale, "embed.leaderboard.empty", nil),
			ColorBlue,
		)
	}
	var b strings.Builder
	for i, row := range rows {
		b.WriteString(t.T(locale, "embed.leaderboard.row", map[string]any{"Position": i + 1, "Name": row.Name, "RP": row.RP}))
		b.WriteString("\n")
	}
	titleKey := "embed.leaderboard.title"
	if historical {
		titleKey = "embed.leaderboard.historical_title"
	}
	return newEmbed(t.T(locale, titleKey, nil), b.String(), ColorPurple)
}

// TotalsEmbed answers /historical-rp. nextReset is omitted when zero.
func TotalsEmbed(t output.T, locale string, b entities.Balance, nextReset time.Time) *discordgo.MessageEmbed {
	desc := t.T(locale, "embed.totals.description", map[string]any{"Historical": b.HistoricalRP, "Weekly": b.WeeklyRP, "Total": b.Total()})
	if !nextReset.IsZero() {
		desc += "\n\n" + t.T(locale, "embed.totals.next_reset", map[string]any{"When": RelativeTimestamp(nextReset)})
	}
	return newEmbed(t.T(locale, "embed.totals.title", nil), desc, ColorGold)
}

// WipeEmbed answers /simulate-weekly-wipe.
func WipeEmbed(t output.T, locale string, r *entities.Rollover) *discordgo.MessageEmbed {
	desc := t.T(locale, "embed.wipe.description", nil)
	if r != nil && r.UsersArchived > 0 {
		desc += "\n" + t.T(locale, "embed.wipe.summary", map[string]any{"Users": r.UsersArchived, "RP": r.ArchivedRP})
	}
	return newEmbed(t.T(locale, "embed.wipe.title", nil), desc, ColorRed)
}

// MutationEmbed is the activity-log entry for one ledger change.
func MutationEmbed(t output.T, locale string, m entities.Mutation) *discordgo.MessageEmbed {
	color := ColorGreen
	switch m.Kind {
	case domain.MutationRevoke, domain.MutationTake, domain.MutationRevokeHistorical:
		color = ColorOrange
	}
	e := newEmbed(t.T(locale, "log.mutation."+m.Kind, nil), "", color)
	e.Fields = []*discordgo.MessageEmbedField{
		{Name: t.T(locale, "log.field.guild", nil), Value: m.GuildID, Inline: true},
		{Name: t.T(locale, "log.field.actor", nil), Value: Mention(m.ActorID), Inline: true},
		{Name: t.T(locale, "log.field.target", nil), Value: Mention(m.TargetID), Inline: true},
		{Name: t.T(locale, "log.field.amount", nil), Value: fmt.Sprintf("%d RP", m.Amount), Inline: true},
		{Name: t.T(locale, "log.field.weekly", nil), Value: fmt.Sprintf("%d RP", m.Balance.WeeklyRP), Inline: true},
		{Name: t.T(locale, "log.field.historical", nil), Value: fmt.Sprintf("%d RP", m.Balance.HistoricalRP), Inline: true},
	}
	if !m.At.IsZero() {
		e.Timestamp = m.At.Format(time.RFC3339)
	}
	return e
}

// RolloverReportEmbeds builds one embed per archived guild, or a single
// "nothing archived" embed.
func RolloverReportEmbeds(t output.T, locale, trigger string, rollovers []entities.Rollover) []*discordgo.MessageEmbed {
	title := t.T(locale, "report.title."+trigger, nil)
	if len(rollovers) == 0 {
		return []*discordgo.MessageEmbed{newEmbed(title, t.T(locale, "report.empty", nil), ColorBlue)}
	}
	embeds := make([]*discordgo.MessageEmbed, 0, len(rollovers))
	for _, r := range rollovers {
		e := newEmbed(title, t.T(locale, "report.description", map[string]any{"Users": r.UsersArchived, "RP": r.ArchivedRP}), ColorRed)
		e.Fields = []*discordgo.MessageEmbedField{
			{Name: t.T(locale, "log.field.guild", nil), Value: r.GuildID, Inline: true},
		}
		if len(r.Top) > 0 {
			var b strings.Builder
			for i, top := range r.Top {
				fmt.Fprintf(&b, "%d. %s — %d RP\n", i+1, Mention(top.UserID), top.WeeklyRP)
			}
			e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: t.T(locale, "report.top", nil), Value: b.String()})
		}
		e.Footer = &discordgo.MessageEmbedFooter{Text: r.ID.String()}
		if !r.ExecutedAt.IsZero() {
			e.Timestamp = r.ExecutedAt.Format(time.RFC3339)
		}
		embeds = append(embeds, e)
	}
	return embeds
}
