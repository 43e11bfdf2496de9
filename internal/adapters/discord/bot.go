package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentMessageContent

// NewSession creates the Discord session without connecting it, so that the
// platform and notifier adapters can be built before the bot starts.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("erreur lors de la création de la session Discord: %w", err)
	}
	s.Identify.Intents = intents
	s.StateEnabled = true
	return s, nil
}

// Bot is the Discord adapter.
type Bot struct {
	session *discordgo.Session
	handler *Handler
}

func NewBot(s *discordgo.Session, handler *Handler) *Bot {
	return &Bot{session: s, handler: handler}
}

// Run connects and serves events until ctx ends. ctx is also the lifetime
// of the windows started from commands.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("🤖 Bot en ligne")
	})
	b.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		b.handler.OnMessageCreate(ctx, m)
	})
	b.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		b.handler.OnReactionAdd(ctx, r)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	<-ctx.Done()
	log.Info().Msg("🛑 Arrêt du bot")
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("erreur lors de la fermeture de la session: %w", err)
	}
	return nil
}
