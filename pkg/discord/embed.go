package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorRegistration = 0x00FF33
	ColorCheckIn      = 0x0033FF
	ColorInfo         = 0x5865F2
	ColorClosed       = 0x808080

	// MessageLimit is the maximum length of a message content.
	MessageLimit = 2000
)

// Field is one embed field; empty fields are skipped.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// BuildEmbed assembles an embed, dropping fields without a value.
func BuildEmbed(title, description string, color int, footer string, fields ...Field) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	}
	return embed
}

func ChannelMention(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("<#%s>", id)
}

func RoleMention(id string) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("<@&%s>", id)
}

func UserMention(id string) string {
	return fmt.Sprintf("<@%s>", id)
}

// Pagify splits text on line boundaries into chunks of at most limit bytes.
// A single line longer than limit is cut.
func Pagify(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	var pages []string
	var b strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if b.Len() > 0 {
				pages = append(pages, b.String())
				b.Reset()
			}
			pages = append(pages, line[:limit])
			line = line[limit:]
		}
		if b.Len()+len(line) > limit {
			pages = append(pages, b.String())
			b.Reset()
		}
		b.WriteString(line)
	}
	if b.Len() > 0 {
		pages = append(pages, b.String())
	}
	return pages
}
