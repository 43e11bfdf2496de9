package entities

import (
	"slices"
	"time"
)

// Message is an inbound chat message. AuthorName is the name shown in the
// guild; AuthorUsername is the account name, independent of any nickname.
type Message struct {
	GuildID        string
	ChannelID      string
	MessageID      string
	AuthorID       string
	AuthorName     string
	AuthorUsername string
	AuthorRoleIDs  []string
	Content        string
	CreatedAt      time.Time
}

func (m Message) Author() Participant {
	return Participant{UserID: m.AuthorID, DisplayName: m.AuthorName}
}

func (m Message) HasRole(roleID string) bool {
	return roleID != "" && slices.Contains(m.AuthorRoleIDs, roleID)
}

// Artifact is a generated file attached to a report.
type Artifact struct {
	Name    string
	Content []byte
}
