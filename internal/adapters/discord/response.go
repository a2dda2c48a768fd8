package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"rpbot/internal/domain/entities"
	pkgdiscord "rpbot/pkg/discord"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

// memberSource resolves guild members for display names.
type memberSource interface {
	Member(guildID, userID string) (*discordgo.Member, error)
}

// cachedMembers reads the state cache first and fetches misses, caching
// what it fetched.
type cachedMembers struct {
	state *discordgo.State
	fetch func(guildID, userID string) (*discordgo.Member, error)
}

func (c cachedMembers) Member(guildID, userID string) (*discordgo.Member, error) {
	if c.state != nil {
		if m, err := c.state.Member(guildID, userID); err == nil {
			return m, nil
		}
	}
	if c.fetch == nil {
		return nil, discordgo.ErrStateNotFound
	}
	m, err := c.fetch(guildID, userID)
	if err != nil {
		return nil, err
	}
	if c.state != nil {
		m.GuildID = guildID
		_ = c.state.MemberAdd(m)
	}
	return m, nil
}

func sessionMembers(ctx context.Context, s *discordgo.Session) cachedMembers {
	return cachedMembers{
		state: s.State,
		fetch: func(guildID, userID string) (*discordgo.Member, error) {
			return s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		},
	}
}

// displayName falls back to a mention, which Discord renders even for
// members it could not resolve.
func displayName(members memberSource, guildID, userID string) string {
	if members != nil {
		if m, err := members.Member(guildID, userID); err == nil {
			if name := resolveDisplayName(m); name != "" {
				return name
			}
		}
	}
	return pkgdiscord.Mention(userID)
}

func leaderboardRows(members memberSource, guildID string, balances []entities.Balance, historical bool) []pkgdiscord.LeaderboardRow {
	rows := make([]pkgdiscord.LeaderboardRow, 0, len(balances))
	for _, b := range balances {
		rp := b.WeeklyRP
		if historical {
			rp = b.HistoricalRP
		}
		rows = append(rows, pkgdiscord.LeaderboardRow{Name: displayName(members, guildID, b.UserID), RP: rp})
	}
	return rows
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respondEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to respond to interaction")
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:          []*discordgo.MessageEmbed{embed},
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to respond to interaction")
	}
}

// deferResponse acknowledges i with a public "thinking" state. It reports
// whether the acknowledgement went through.
func deferResponse(s *discordgo.Session, i *discordgo.Interaction) bool {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to defer interaction")
		return false
	}
	return true
}

func editEmbed(s *discordgo.Session, i *discordgo.Interaction, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{
		Embeds:          &embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to edit interaction response")
	}
}

// replaceWithEphemeral drops a deferred public reply and sends content to
// the caller only.
func replaceWithEphemeral(s *discordgo.Session, i *discordgo.Interaction, content string) {
	if err := s.InteractionResponseDelete(i); err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to delete deferred response")
	}
	_, err := s.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Warn().Err(err).Str("interaction", i.ID).Msg("⚠️ Failed to send follow-up")
	}
}
