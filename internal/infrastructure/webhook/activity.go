// Package webhook posts the ledger activity log and rollover reports to a
// Discord webhook.
package webhook

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
	pkgdiscord "rpbot/pkg/discord"
)

// Discord accepts at most ten embeds per message.
const maxEmbedsPerMessage = 10

// executor is the part of *discordgo.Session used to post.
type executor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ output.ActivityLog = (*ActivityLog)(nil)

type ActivityLog struct {
	exec       executor
	webhookID  string
	token      string
	translator output.T
	locale     string
	username   string
}

// NewActivityLog posts through session to the webhook at rawURL, rendering
// text in locale.
func NewActivityLog(session executor, rawURL string, translator output.T, locale string) (*ActivityLog, error) {
	id, token, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return &ActivityLog{
		exec:       session,
		webhookID:  id,
		token:      token,
		translator: translator,
		locale:     locale,
		username:   "RP Ledger",
	}, nil
}

// ParseURL extracts the webhook ID and token from
// https://discord.com/api[/vN]/webhooks/<id>/<token>.
func ParseURL(rawURL string) (id, token string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("webhook: parse url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) {
			id, token = parts[i+1], parts[i+2]
			break
		}
	}
	if id == "" || token == "" {
		return "", "", fmt.Errorf("webhook: %q is not a Discord webhook URL", rawURL)
	}
	return id, token, nil
}

func (a *ActivityLog) LogMutation(ctx context.Context, m entities.Mutation) error {
	return a.send(ctx, []*discordgo.MessageEmbed{pkgdiscord.MutationEmbed(a.translator, a.locale, m)})
}

func (a *ActivityLog) LogRollover(ctx context.Context, trigger string, rollovers []entities.Rollover) error {
	embeds := pkgdiscord.RolloverReportEmbeds(a.translator, a.locale, trigger, rollovers)
	for start := 0; start < len(embeds); start += maxEmbedsPerMessage {
		end := min(start+maxEmbedsPerMessage, len(embeds))
		if err := a.send(ctx, embeds[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (a *ActivityLog) send(ctx context.Context, embeds []*discordgo.MessageEmbed) error {
	_, err := a.exec.WebhookExecute(a.webhookID, a.token, false, &discordgo.WebhookParams{
		Username:        a.username,
		Embeds:          embeds,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("webhook execute: %w", err)
	}
	return nil
}

var _ output.ActivityLog = Nop{}

// Nop is the ActivityLog used when no webhook is configured.
type Nop struct{}

func (Nop) LogMutation(context.Context, entities.Mutation) error { return nil }

func (Nop) LogRollover(context.Context, string, []entities.Rollover) error { return nil }
