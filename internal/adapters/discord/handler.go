package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/domain"
	"tournamentbot/internal/ports/input"
	"tournamentbot/internal/ports/output"
)

// Options tunes the chat surface.
type Options struct {
	Prefix           string
	Locale           string
	Location         *time.Location
	PromptTimeout    time.Duration
	ProgressInterval time.Duration
}

// Handler handles Discord events using the tournament use case.
type Handler struct {
	s        *discordgo.Session
	uc       input.TournamentUseCase
	platform *Platform
	notifier *Notifier
	render   renderer
	opts     Options
	prompts  *Prompts
	menus    *menus
	commands map[string]commandSpec
}

// NewHandler creates a Handler.
func NewHandler(s *discordgo.Session, uc input.TournamentUseCase, platform *Platform, notifier *Notifier, t output.T, opts Options) *Handler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	h := &Handler{
		s:        s,
		uc:       uc,
		platform: platform,
		notifier: notifier,
		render:   renderer{t: t, locale: opts.Locale, loc: opts.Location},
		opts:     opts,
		prompts:  NewPrompts(),
		menus:    newMenus(),
	}
	h.commands = h.commandTable()
	return h
}

// OnMessageCreate routes prefixed commands; every other guild message goes
// to the open windows.
func (h *Handler) OnMessageCreate(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if cmd, ok := Parse(h.opts.Prefix, m.Content); ok {
		if entry, ok := h.commands[cmd.Name]; ok {
			h.dispatch(ctx, &request{msg: m.Message, cmd: cmd}, entry)
			return
		}
	}
	h.uc.HandleMessage(ctx, toMessage(m.Message, m.Member))
}

// OnReactionAdd answers prompts and opens the cancel prompt of progress menus.
func (h *Handler) OnReactionAdd(ctx context.Context, r *discordgo.MessageReactionAdd) {
	if r.UserID == h.s.State.User.ID || r.GuildID == "" {
		return
	}
	if h.prompts.Resolve(r.MessageID, r.UserID, r.Emoji.Name) {
		return
	}
	if r.Emoji.Name != noEmoji {
		return
	}
	mn, ok := h.menus.claim(r.MessageID, r.UserID)
	if !ok {
		return
	}
	defer h.menus.release(r.MessageID)
	h.confirmCancel(ctx, r.ChannelID, r.UserID, mn)
}

func (h *Handler) dispatch(ctx context.Context, req *request, entry commandSpec) {
	perms, err := h.s.UserChannelPermissions(req.msg.Author.ID, req.msg.ChannelID, discordgo.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("guild", req.msg.GuildID).Str("user", req.msg.Author.ID).Msg("❌ Permissions introuvables")
		return
	}
	if !allowed(perms, entry.access) {
		h.reply(ctx, req, h.render.tr("command.forbidden", nil))
		return
	}

	log.Debug().Str("guild", req.msg.GuildID).Str("user", req.msg.Author.ID).Str("command", req.cmd.Name).Strs("args", req.cmd.Args).Msg("⚙️ Commande reçue")
	if err := entry.run(ctx, req); err != nil {
		h.replyError(ctx, req, entry, err)
	}
}

// errUsage asks for the command usage to be shown.
var errUsage = errors.New("usage")

func (h *Handler) replyError(ctx context.Context, req *request, entry commandSpec, err error) {
	var pe *ParseError
	switch {
	case errors.Is(err, errUsage):
		h.reply(ctx, req, h.render.tr("usage", map[string]any{"Usage": h.opts.Prefix + entry.usage}))
	case errors.As(err, &pe):
		h.reply(ctx, req, h.render.tr(pe.Key, pe.Data()))
	case domain.Code(err) != "":
		h.reply(ctx, req, h.render.errorMessage(err))
	case errors.Is(err, context.Canceled):
		log.Warn().Str("guild", req.msg.GuildID).Str("command", req.cmd.Name).Msg("⚠️ Commande interrompue")
	default:
		log.Error().Err(err).Str("guild", req.msg.GuildID).Str("command", req.cmd.Name).Msg("❌ Erreur lors de la commande")
		h.reply(ctx, req, h.render.errorMessage(err))
	}
}

func (h *Handler) reply(ctx context.Context, req *request, content string) *discordgo.Message {
	msg, err := h.s.ChannelMessageSend(req.msg.ChannelID, content, discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("channel", req.msg.ChannelID).Msg("⚠️ Réponse non envoyée")
		return nil
	}
	return msg
}

// ask posts a yes/no question answerable by userID only.
func (h *Handler) ask(ctx context.Context, channelID, userID, question string) (bool, error) {
	msg, err := h.s.ChannelMessageSend(channelID, question, discordgo.WithContext(ctx))
	if err != nil {
		return false, err
	}
	pending := h.prompts.Expect(msg.ID, userID)
	for _, e := range []string{yesEmoji, noEmoji} {
		if err := h.s.MessageReactionAdd(channelID, msg.ID, e, discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Str("channel", channelID).Msg("⚠️ Réaction impossible")
		}
	}
	return pending.Wait(ctx, h.opts.PromptTimeout), nil
}

// confirm asks the invoking moderator and reports "Annulation." on a no.
func (h *Handler) confirm(ctx context.Context, req *request, question string) (bool, error) {
	yes, err := h.ask(ctx, req.msg.ChannelID, req.msg.Author.ID, question)
	if err != nil {
		return false, err
	}
	if !yes {
		h.reply(ctx, req, h.render.tr("prompt.cancelled", nil))
	}
	return yes, nil
}

func (h *Handler) confirmCancel(ctx context.Context, channelID, userID string, mn menu) {
	yes, err := h.ask(ctx, channelID, userID, h.render.tr("prompt.cancel_question", nil))
	if err != nil {
		log.Warn().Err(err).Str("guild", mn.guildID).Msg("⚠️ Question d'annulation non envoyée")
		return
	}
	if !yes {
		if _, err := h.s.ChannelMessageSend(channelID, h.render.tr("prompt.not_cancelled."+string(mn.kind), nil), discordgo.WithContext(ctx)); err != nil {
			log.Warn().Err(err).Msg("⚠️ Réponse non envoyée")
		}
		return
	}
	if err := h.uc.CancelRun(ctx, mn.guildID, mn.runID); err != nil && !errors.Is(err, domain.ErrNoActiveWindow) {
		log.Error().Err(err).Str("guild", mn.guildID).Msg("❌ Annulation impossible")
	}
}
