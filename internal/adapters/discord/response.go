package discord

import (
	"github.com/bwmarrin/discordgo"

	"tournamentbot/internal/domain/entities"
)

// Nick > GlobalName > Username
func resolveDisplayName(member *discordgo.Member) string {
	if member == nil || member.User == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	return userDisplayName(member.User)
}

// GlobalName > Username
func userDisplayName(user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func toParticipant(member *discordgo.Member) entities.Participant {
	return entities.Participant{UserID: member.User.ID, DisplayName: resolveDisplayName(member)}
}

// toMessage converts an inbound message; member carries the author roles
// and is nil for history reads.
func toMessage(m *discordgo.Message, member *discordgo.Member) entities.Message {
	msg := entities.Message{
		GuildID:        m.GuildID,
		ChannelID:      m.ChannelID,
		MessageID:      m.ID,
		AuthorID:       m.Author.ID,
		AuthorName:     userDisplayName(m.Author),
		AuthorUsername: m.Author.Username,
		Content:        m.Content,
		CreatedAt:      m.Timestamp,
	}
	if member != nil {
		msg.AuthorRoleIDs = member.Roles
		if member.Nick != "" {
			msg.AuthorName = member.Nick
		}
	}
	return msg
}
