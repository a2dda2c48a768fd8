package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"rpbot/internal/config"
	"rpbot/internal/ports/output"
)

// Scheduler is the background rollover timer driven by the bot lifecycle.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// Bot is the Discord adapter.
type Bot struct {
	session    *discordgo.Session
	config     *config.Config
	handler    *Handler
	translator output.T
	scheduler  Scheduler
}

// NewSession creates an unopened session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return s, nil
}

// NewBot wires the handler onto session. scheduler may be nil.
func NewBot(cfg *config.Config, session *discordgo.Session, handler *Handler, translator output.T, scheduler Scheduler) *Bot {
	bot := &Bot{
		session:    session,
		config:     cfg,
		handler:    handler,
		translator: translator,
		scheduler:  scheduler,
	}
	bot.setupHandlers()
	return bot
}

func (b *Bot) setupHandlers() {
	b.session.AddHandler(b.handleReady)
	b.session.AddHandler(b.handleInteraction)
}

func (b *Bot) handleReady(_ *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.String()).
		Str("id", r.User.ID).
		Int("guilds", len(r.Guilds)).
		Msg("🔌 Connected to Discord")
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	// Interaction members carry no guild ID; cache them so leaderboards can
	// show their names.
	if i.Member != nil && i.GuildID != "" && s.State != nil {
		m := *i.Member
		m.GuildID = i.GuildID
		_ = s.State.MemberAdd(&m)
	}
	b.handler.HandleCommand(s, i)
}

// Start runs the bot until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer b.session.Close()

	if err := b.registerCommands(); err != nil {
		return err
	}

	if b.scheduler != nil {
		if err := b.scheduler.Start(ctx); err != nil {
			return err
		}
		defer b.scheduler.Stop()
	}

	log.Info().Msg("🤖 Bot online, press CTRL+C to quit")
	<-ctx.Done()
	log.Info().Msg("👋 Shutting down")
	return nil
}

// registerCommands syncs slash commands on GUILD_ID, or globally when unset.
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	cmds := Commands(b.translator, b.config.DefaultLocale)

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.config.GuildID, cmds)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Bulk command sync failed, registering one by one")
		registered = registered[:0]
		for _, cmd := range cmds {
			c, err := b.session.ApplicationCommandCreate(appID, b.config.GuildID, cmd)
			if err != nil {
				log.Warn().Err(err).Str("command", cmd.Name).Msg("⚠️ Failed to register command")
				continue
			}
			registered = append(registered, c)
		}
		if len(registered) == 0 {
			return fmt.Errorf("register commands: %w", err)
		}
	}

	scope := "global"
	if b.config.GuildID != "" {
		scope = b.config.GuildID
	}
	log.Info().Int("count", len(registered)).Str("scope", scope).Msg("✅ Slash commands synced")
	return nil
}
