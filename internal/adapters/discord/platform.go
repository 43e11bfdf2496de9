package discord

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/ports/output"
)

var _ output.Platform = (*Platform)(nil)

const (
	membersPageSize  = 1000
	messagesPageSize = 100
)

// Platform implements output.Platform with a discordgo session. Reads go
// through the state cache first.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func isNotFound(err error) bool {
	var rest *discordgo.RESTError
	return errors.As(err, &rest) && rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

func (p *Platform) botID() string {
	return p.s.State.User.ID
}

func (p *Platform) roles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if g, err := p.s.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	roles, err := p.s.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (p *Platform) member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := p.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (p *Platform) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := p.s.State.Channel(channelID); err == nil {
		return ch, nil
	}
	return p.s.Channel(channelID, discordgo.WithContext(ctx))
}

func (p *Platform) Role(ctx context.Context, guildID, roleID string) (string, bool, error) {
	roles, err := p.roles(ctx, guildID)
	if err != nil {
		return "", false, err
	}
	for _, r := range roles {
		if r.ID == roleID {
			return r.Name, true, nil
		}
	}
	return "", false, nil
}

// RoleByName finds a role by case-insensitive name.
func (p *Platform) RoleByName(ctx context.Context, guildID, name string) (string, bool, error) {
	roles, err := p.roles(ctx, guildID)
	if err != nil {
		return "", false, err
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return r.ID, true, nil
		}
	}
	return "", false, nil
}

func (p *Platform) ChannelExists(ctx context.Context, guildID, channelID string) (bool, error) {
	ch, err := p.channel(ctx, channelID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get channel: %w", err)
	}
	return ch.GuildID == guildID, nil
}

func (p *Platform) CanAssignRole(ctx context.Context, guildID, roleID string) (bool, error) {
	roles, err := p.roles(ctx, guildID)
	if err != nil {
		return false, err
	}
	bot, err := p.member(ctx, guildID, p.botID())
	if err != nil {
		return false, fmt.Errorf("get bot member: %w", err)
	}
	return roleBelow(roles, bot.Roles, roleID), nil
}

// roleBelow reports whether roleID sits strictly under the highest of held.
func roleBelow(roles []*discordgo.Role, held []string, roleID string) bool {
	top, target := -1, -1
	for _, r := range roles {
		if slices.Contains(held, r.ID) {
			top = max(top, r.Position)
		}
		if r.ID == roleID {
			target = r.Position
		}
	}
	return target >= 0 && target < top
}

func (p *Platform) hasChannelPermission(ctx context.Context, channelID string, need int64) (bool, error) {
	perms, err := p.s.UserChannelPermissions(p.botID(), channelID, discordgo.WithContext(ctx))
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("channel permissions: %w", err)
	}
	return hasPermission(perms, need), nil
}

func (p *Platform) CanManageChannel(ctx context.Context, guildID, channelID string) (bool, error) {
	if ok, err := p.ChannelExists(ctx, guildID, channelID); err != nil || !ok {
		return false, err
	}
	return p.hasChannelPermission(ctx, channelID, discordgo.PermissionViewChannel|discordgo.PermissionManageChannels)
}

func (p *Platform) CanReadHistory(ctx context.Context, guildID, channelID string) (bool, error) {
	if ok, err := p.ChannelExists(ctx, guildID, channelID); err != nil || !ok {
		return false, err
	}
	return p.hasChannelPermission(ctx, channelID, discordgo.PermissionViewChannel|discordgo.PermissionReadMessageHistory)
}

// RoleMembers pages through the whole member list; it needs the guild
// members intent.
func (p *Platform) RoleMembers(ctx context.Context, guildID, roleID string) ([]entities.Participant, error) {
	var out []entities.Participant
	after := ""
	for {
		page, err := p.s.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("list members: %w", err)
		}
		for _, m := range page {
			if m.User != nil && slices.Contains(m.Roles, roleID) {
				out = append(out, toParticipant(m))
			}
		}
		if len(page) < membersPageSize {
			return out, nil
		}
		after = page[len(page)-1].User.ID
	}
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (entities.Participant, bool, error) {
	m, err := p.member(ctx, guildID, userID)
	if isNotFound(err) {
		return entities.Participant{UserID: userID}, false, nil
	}
	if err != nil {
		return entities.Participant{}, false, fmt.Errorf("get member: %w", err)
	}
	return toParticipant(m), true, nil
}

func (p *Platform) MemberHasRole(ctx context.Context, guildID, userID, roleID string) (bool, error) {
	m, err := p.member(ctx, guildID, userID)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get member: %w", err)
	}
	return slices.Contains(m.Roles, roleID), nil
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return p.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID, reason string) error {
	return p.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (p *Platform) ResetNickname(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildMemberNickname(guildID, userID, "", discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (p *Platform) SetChannelSend(ctx context.Context, channelID, roleID string, allow bool, reason string) error {
	ch, err := p.channel(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get channel: %w", err)
	}
	var current *discordgo.PermissionOverwrite
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == roleID && ow.Type == discordgo.PermissionOverwriteTypeRole {
			current = ow
			break
		}
	}
	allowBits, denyBits := sendOverwrite(current, allow)
	return p.s.ChannelPermissionSet(channelID, roleID, discordgo.PermissionOverwriteTypeRole, allowBits, denyBits,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

// sendOverwrite toggles send on top of the existing overwrite; viewing is
// always allowed.
func sendOverwrite(current *discordgo.PermissionOverwrite, allow bool) (allowBits, denyBits int64) {
	if current != nil {
		allowBits, denyBits = current.Allow, current.Deny
	}
	allowBits |= discordgo.PermissionViewChannel
	denyBits &^= discordgo.PermissionViewChannel
	if allow {
		allowBits |= discordgo.PermissionSendMessages
		denyBits &^= discordgo.PermissionSendMessages
	} else {
		denyBits |= discordgo.PermissionSendMessages
		allowBits &^= discordgo.PermissionSendMessages
	}
	return allowBits, denyBits
}

// History reads up to limit messages oldest first. Bot messages are skipped.
func (p *Platform) History(ctx context.Context, channelID, afterID string, limit int) ([]entities.Message, string, error) {
	after := afterID
	if after == "" {
		after = "0"
	}
	var out []entities.Message
	scanned := 0
	for {
		page, err := p.s.ChannelMessages(channelID, messagesPageSize, "", after, "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, "", fmt.Errorf("read history: %w", err)
		}
		slices.SortFunc(page, func(a, b *discordgo.Message) int { return compareSnowflakes(a.ID, b.ID) })
		for _, m := range page {
			if scanned == limit {
				return out, after, nil
			}
			scanned++
			after = m.ID
			if m.Author == nil || m.Author.Bot {
				continue
			}
			out = append(out, toMessage(m, m.Member))
		}
		if len(page) < messagesPageSize {
			return out, "", nil
		}
	}
}

// compareSnowflakes orders decimal ids numerically.
func compareSnowflakes(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}
