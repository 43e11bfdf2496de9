package discord

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Command is a prefixed message split into its name and arguments.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument, "" when missing.
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	return c.Args[i]
}

// Rest joins the arguments from i on, for values that may contain spaces
// such as role names.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}
	return strings.Join(c.Args[i:], " ")
}

// ParseError is a user input error rendered through the translation key.
type ParseError struct {
	Key string
	Arg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Key, e.Arg)
}

func (e *ParseError) Data() map[string]any {
	return map[string]any{"Arg": e.Arg}
}

var (
	roleMention    = regexp.MustCompile(`^<@&(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	snowflake      = regexp.MustCompile(`^\d{15,21}$`)
	messageLink    = regexp.MustCompile(`^https://(?:(?:ptb|canary)\.)?discord(?:app)?\.com/channels/(\d+|@me)/(\d+)/(\d+)$`)
)

// Parse splits content when it starts with prefix. ok is false for messages
// that are not addressed to the bot.
func Parse(prefix, content string) (cmd Command, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return Command{}, false
	}
	words := strings.Fields(content[len(prefix):])
	if len(words) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(words[0]), Args: words[1:]}, true
}

func extractID(re *regexp.Regexp, arg string) (string, bool) {
	if m := re.FindStringSubmatch(arg); m != nil {
		return m[1], true
	}
	if snowflake.MatchString(arg) {
		return arg, true
	}
	return "", false
}

// RoleID accepts a role mention or a bare id.
func RoleID(arg string) (string, bool) {
	return extractID(roleMention, arg)
}

// ChannelID accepts a channel mention or a bare id.
func ChannelID(arg string) (string, bool) {
	return extractID(channelMention, arg)
}

// UserID accepts a user mention (with or without "!") or a bare id.
func UserID(arg string) (string, bool) {
	return extractID(userMention, arg)
}

// MessageRef points at a message from a link or a bare id.
type MessageRef struct {
	GuildID   string
	ChannelID string
	MessageID string
}

func ParseMessageRef(arg string) (MessageRef, error) {
	if m := messageLink.FindStringSubmatch(arg); m != nil {
		return MessageRef{GuildID: m[1], ChannelID: m[2], MessageID: m[3]}, nil
	}
	if snowflake.MatchString(arg) {
		return MessageRef{MessageID: arg}, nil
	}
	return MessageRef{}, &ParseError{Key: "parse.message", Arg: arg}
}

// ParseCount reads a participant count. Range checks belong to the use case.
func ParseCount(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, &ParseError{Key: "parse.number", Arg: arg}
	}
	return n, nil
}

// ParseDuration accepts Go durations ("45m", "1h30m") or a bare number of seconds.
func ParseDuration(arg string) (time.Duration, error) {
	if secs, err := strconv.ParseInt(arg, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(arg)
	if err != nil {
		return 0, &ParseError{Key: "parse.duration", Arg: arg}
	}
	return d, nil
}
