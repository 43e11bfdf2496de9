package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
	pkgdiscord "tournamentbot/pkg/discord"
)

type request struct {
	msg *discordgo.Message
	cmd Command
}

func (r *request) guildID() string {
	return r.msg.GuildID
}

type commandSpec struct {
	access access
	usage  string
	run    func(ctx context.Context, req *request) error
}

func (h *Handler) commandTable() map[string]commandSpec {
	return map[string]commandSpec{
		"tournamentset":  {accessAdmin, "tournamentset participant|tournoi|checkinrole <rôle> | inscription|checkin <channel> | checkintime <durée> | settings", h.tournamentSet},
		"tournamentban":  {accessAdmin, "tournamentban add|remove <membre> | list | clear", h.tournamentBan},
		"inscription":    {accessModerator, "inscription <limite>", h.inscription},
		"valid":          {accessModerator, "valid <nombre>", h.valid},
		"manualregister": {accessModerator, "manualregister <channel> <limite> [lien du message]", h.manualRegister},
		"startcheck":     {accessModerator, "startcheck", h.startCheck},
		"endtournament":  {accessModerator, "endtournament", h.endTournament},
		"tinfo":          {accessModerator, "tinfo", h.tinfo},
		"list":           {accessModerator, "list", h.list},
		"namecheck":      {accessMember, "namecheck [texte]", h.nameCheck},
	}
}

var roleKinds = map[string]entities.RoleKind{
	"participant": entities.RoleParticipant,
	"tournoi":     entities.RoleTournament,
	"checkinrole": entities.RoleCheckIn,
}

var channelKinds = map[string]entities.ChannelKind{
	"inscription": entities.ChannelInscription,
	"checkin":     entities.ChannelCheckIn,
}

func (h *Handler) tournamentSet(ctx context.Context, req *request) error {
	sub, value := req.cmd.Arg(0), req.cmd.Rest(1)
	if kind, ok := roleKinds[sub]; ok {
		roleID, err := h.resolveRole(ctx, req.guildID(), value)
		if err != nil {
			return err
		}
		if err := h.uc.SetRole(ctx, req.guildID(), kind, roleID); err != nil {
			return err
		}
		h.reply(ctx, req, h.render.tr("settings.role_set", nil))
		return nil
	}
	if kind, ok := channelKinds[sub]; ok {
		channelID, ok := ChannelID(req.cmd.Arg(1))
		if !ok {
			return &ParseError{Key: "parse.channel", Arg: req.cmd.Arg(1)}
		}
		if err := h.uc.SetChannel(ctx, req.guildID(), kind, channelID); err != nil {
			return err
		}
		h.reply(ctx, req, h.render.tr("settings.channel_set", nil))
		return nil
	}

	switch sub {
	case "checkintime":
		d, err := ParseDuration(req.cmd.Arg(1))
		if err != nil {
			return err
		}
		if err := h.uc.SetCheckInDuration(ctx, req.guildID(), d); err != nil {
			return err
		}
		h.reply(ctx, req, h.render.tr("settings.duration_set", map[string]any{"Duration": pkgdiscord.FormatRemaining(d)}))
		return nil
	case "settings":
		info, err := h.uc.Info(ctx, req.guildID())
		if err != nil {
			return err
		}
		_, err = h.s.ChannelMessageSendEmbed(req.msg.ChannelID, h.render.settingsEmbed(info), discordgo.WithContext(ctx))
		return err
	}
	return errUsage
}

// resolveRole accepts a mention, an id or a role name.
func (h *Handler) resolveRole(ctx context.Context, guildID, arg string) (string, error) {
	if arg == "" {
		return "", errUsage
	}
	if id, ok := RoleID(arg); ok {
		return id, nil
	}
	id, ok, err := h.platform.RoleByName(ctx, guildID, arg)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &ParseError{Key: "parse.role", Arg: arg}
	}
	return id, nil
}

func memberArg(req *request) (string, error) {
	arg := req.cmd.Arg(1)
	if arg == "" {
		return "", errUsage
	}
	id, ok := UserID(arg)
	if !ok {
		return "", &ParseError{Key: "parse.member", Arg: arg}
	}
	return id, nil
}

func (h *Handler) tournamentBan(ctx context.Context, req *request) error {
	switch req.cmd.Arg(0) {
	case "add":
		userID, err := memberArg(req)
		if err != nil {
			return err
		}
		res, err := h.uc.Ban(ctx, req.guildID(), userID)
		if err != nil {
			return err
		}
		key := "ban.added"
		if !res.Added {
			key = "ban.already"
		}
		content := h.render.tr(key, map[string]any{"Member": pkgdiscord.UserMention(userID)})
		if res.RoleRemoved {
			content += "\n" + h.render.tr("ban.role_removed", nil)
		}
		h.reply(ctx, req, content)
		return nil
	case "remove":
		userID, err := memberArg(req)
		if err != nil {
			return err
		}
		if err := h.uc.Unban(ctx, req.guildID(), userID); err != nil {
			return err
		}
		h.reply(ctx, req, h.render.tr("ban.removed", map[string]any{"Member": pkgdiscord.UserMention(userID)}))
		return nil
	case "list":
		entries, err := h.uc.DenyList(ctx, req.guildID())
		if err != nil {
			return err
		}
		for _, page := range pkgdiscord.Pagify(h.render.denyListText(entries), pkgdiscord.MessageLimit) {
			h.reply(ctx, req, page)
		}
		return nil
	case "clear":
		yes, err := h.confirm(ctx, req, h.render.tr("prompt.clear", nil))
		if err != nil || !yes {
			return err
		}
		n, err := h.uc.ClearDenyList(ctx, req.guildID())
		if err != nil {
			return err
		}
		h.reply(ctx, req, h.render.tr("ban.cleared", map[string]any{"Count": n}))
		return nil
	}
	return errUsage
}

func (h *Handler) inscription(ctx context.Context, req *request) error {
	if req.cmd.Arg(0) == "" {
		return errUsage
	}
	limit, err := ParseCount(req.cmd.Arg(0))
	if err != nil {
		return err
	}
	plan, err := h.uc.PrepareRegistration(ctx, req.guildID(), limit)
	if err != nil {
		return err
	}
	yes, err := h.confirm(ctx, req, h.render.tr("prompt.registration", map[string]any{
		"Channel": pkgdiscord.ChannelMention(plan.ChannelID),
		"Role":    plan.TournamentRole,
		"Limit":   plan.Limit,
	}))
	if err != nil || !yes {
		return err
	}
	handle, err := h.uc.StartRegistration(ctx, req.guildID(), limit, req.msg.ChannelID)
	if err != nil {
		return err
	}
	h.showWindow(ctx, req, handle)
	return nil
}

func (h *Handler) valid(ctx context.Context, req *request) error {
	if req.cmd.Arg(0) == "" {
		return errUsage
	}
	n, err := ParseCount(req.cmd.Arg(0))
	if err != nil {
		return err
	}
	plan, err := h.uc.PrepareValidation(ctx, req.guildID(), n)
	if err != nil {
		return err
	}
	yes, err := h.confirm(ctx, req, h.render.tr("prompt.validation", map[string]any{
		"Role":  plan.RoleName,
		"Count": len(plan.Members),
	}))
	if err != nil || !yes {
		return err
	}
	tracker := application.NewTracker()
	stop := h.bulkProgress(ctx, req.msg.ChannelID, "bulk.adding", tracker)
	_, err = h.uc.Validate(ctx, plan, req.msg.ChannelID, tracker)
	stop()
	return err
}

func (h *Handler) manualRegister(ctx context.Context, req *request) error {
	if len(req.cmd.Args) < 2 {
		return errUsage
	}
	channelID, ok := ChannelID(req.cmd.Arg(0))
	if !ok {
		return &ParseError{Key: "parse.channel", Arg: req.cmd.Arg(0)}
	}
	limit, err := ParseCount(req.cmd.Arg(1))
	if err != nil {
		return err
	}
	var afterID string
	if arg := req.cmd.Arg(2); arg != "" {
		ref, err := ParseMessageRef(arg)
		if err != nil {
			return err
		}
		if ref.ChannelID != "" && ref.ChannelID != channelID {
			return &ParseError{Key: "parse.message_channel", Arg: arg}
		}
		afterID = ref.MessageID
	}
	if err := h.s.ChannelTyping(req.msg.ChannelID, discordgo.WithContext(ctx)); err != nil {
		log.Debug().Err(err).Msg("Indicateur de saisie indisponible")
	}
	_, err = h.uc.ManualRegister(ctx, req.guildID(), channelID, limit, afterID, req.msg.ChannelID)
	return err
}

func (h *Handler) startCheck(ctx context.Context, req *request) error {
	plan, err := h.uc.PrepareCheckIn(ctx, req.guildID())
	if err != nil {
		return err
	}
	yes, err := h.confirm(ctx, req, h.render.tr("prompt.checkin", map[string]any{
		"Channel":  pkgdiscord.ChannelMention(plan.ChannelID),
		"Role":     plan.CheckInRole,
		"Count":    plan.Eligible,
		"Duration": pkgdiscord.FormatRemaining(plan.Duration),
	}))
	if err != nil || !yes {
		return err
	}
	handle, err := h.uc.StartCheckIn(ctx, req.guildID(), req.msg.ChannelID)
	if err != nil {
		return err
	}
	h.showWindow(ctx, req, handle)
	return nil
}

func (h *Handler) endTournament(ctx context.Context, req *request) error {
	plan, err := h.uc.PrepareEnd(ctx, req.guildID())
	if err != nil {
		return err
	}
	yes, err := h.confirm(ctx, req, h.render.tr("prompt.end", map[string]any{
		"Count":  len(plan.Members),
		"Roles":  fmt.Sprintf("%s, %s", plan.ParticipantRole, plan.CheckInRole),
		"Staged": plan.Staged,
	}))
	if err != nil || !yes {
		return err
	}
	tracker := application.NewTracker()
	stop := h.bulkProgress(ctx, req.msg.ChannelID, "bulk.removing", tracker)
	_, err = h.uc.EndTournament(ctx, plan, req.msg.ChannelID, tracker)
	stop()
	return err
}

func (h *Handler) tinfo(ctx context.Context, req *request) error {
	info, err := h.uc.Info(ctx, req.guildID())
	if err != nil {
		return err
	}
	_, err = h.s.ChannelMessageSendEmbed(req.msg.ChannelID, h.render.infoEmbed(info, time.Now()), discordgo.WithContext(ctx))
	return err
}

func (h *Handler) list(ctx context.Context, req *request) error {
	file, n, err := h.uc.List(ctx, req.guildID())
	if err != nil {
		return err
	}
	return h.notifier.Report(ctx, req.msg.ChannelID, h.render.tr("list.report", map[string]any{"Count": n}), file)
}

// nameCheckKey picks the reply for namecheck: text is checked when given,
// the author's account name otherwise.
func nameCheckKey(text, username string) string {
	subject, name := "name", username
	if text != "" {
		subject, name = "text", text
	}
	if window.ValidName(name) {
		return "namecheck." + subject + "_valid"
	}
	return "namecheck." + subject + "_invalid"
}

func (h *Handler) nameCheck(ctx context.Context, req *request) error {
	h.reply(ctx, req, h.render.tr(nameCheckKey(req.cmd.Rest(0), req.msg.Author.Username), nil))
	return nil
}
