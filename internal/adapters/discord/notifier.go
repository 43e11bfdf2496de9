package discord

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/ports/output"
	pkgdiscord "tournamentbot/pkg/discord"
)

var _ output.Notifier = (*Notifier)(nil)

const acceptedEmoji = "✅"

// Notifier implements output.Notifier with a discordgo session.
type Notifier struct {
	s *discordgo.Session
}

func NewNotifier(s *discordgo.Session) *Notifier {
	return &Notifier{s: s}
}

func (n *Notifier) Announce(ctx context.Context, channelID, content string) error {
	for _, page := range pkgdiscord.Pagify(content, pkgdiscord.MessageLimit) {
		if _, err := n.s.ChannelMessageSend(channelID, page, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

func (n *Notifier) Acknowledge(ctx context.Context, channelID, messageID string) error {
	return n.s.MessageReactionAdd(channelID, messageID, acceptedEmoji, discordgo.WithContext(ctx))
}

// Report sends content with files attached to the last page.
func (n *Notifier) Report(ctx context.Context, channelID, content string, files ...entities.Artifact) error {
	pages := pkgdiscord.Pagify(content, pkgdiscord.MessageLimit)
	if len(pages) == 0 {
		pages = []string{""}
	}
	for _, page := range pages[:len(pages)-1] {
		if _, err := n.s.ChannelMessageSend(channelID, page, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("send report: %w", err)
		}
	}
	msg := &discordgo.MessageSend{Content: pages[len(pages)-1], Files: toFiles(files)}
	if _, err := n.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

func toFiles(artifacts []entities.Artifact) []*discordgo.File {
	files := make([]*discordgo.File, 0, len(artifacts))
	for _, a := range artifacts {
		files = append(files, &discordgo.File{
			Name:        a.Name,
			ContentType: contentType(a.Name),
			Reader:      bytes.NewReader(a.Content),
		})
	}
	return files
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
