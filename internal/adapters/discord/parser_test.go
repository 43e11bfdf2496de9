package discord

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		content string
		ok      bool
		name    string
		args    int
	}{
		{"!inscription 32", true, "inscription", 1},
		{"!TournamentSet  participant   <@&123456789012345678>", true, "tournamentset", 2},
		{"!", false, "", 0},
		{"je participe", false, "", 0},
		{"?tinfo", false, "", 0},
	}
	for _, tc := range cases {
		cmd, ok := Parse("!", tc.content)
		if ok != tc.ok || cmd.Name != tc.name || len(cmd.Args) != tc.args {
			t.Errorf("Parse(%q) = %+v, %v", tc.content, cmd, ok)
		}
	}
}

func TestCommandRest(t *testing.T) {
	cmd, _ := Parse("!", "!tournamentset participant Joueurs du tournoi")
	if got := cmd.Rest(1); got != "Joueurs du tournoi" {
		t.Fatalf("Rest(1) = %q", got)
	}
	if cmd.Arg(5) != "" || cmd.Rest(5) != "" {
		t.Fatal("out of range args must be empty")
	}
}

func TestMentionExtractors(t *testing.T) {
	const id = "123456789012345678"
	cases := []struct {
		name string
		fn   func(string) (string, bool)
		arg  string
		ok   bool
	}{
		{"role mention", RoleID, "<@&" + id + ">", true},
		{"role id", RoleID, id, true},
		{"role as user", RoleID, "<@" + id + ">", false},
		{"channel mention", ChannelID, "<#" + id + ">", true},
		{"channel name", ChannelID, "#inscriptions", false},
		{"user mention", UserID, "<@" + id + ">", true},
		{"nick mention", UserID, "<@!" + id + ">", true},
		{"short number", UserID, "42", false},
	}
	for _, tc := range cases {
		got, ok := tc.fn(tc.arg)
		if ok != tc.ok || (ok && got != id) {
			t.Errorf("%s: got %q, %v", tc.name, got, ok)
		}
	}
}

func TestParseMessageRef(t *testing.T) {
	ref, err := ParseMessageRef("https://discord.com/channels/111111111111111111/222222222222222222/333333333333333333")
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if ref.ChannelID != "222222222222222222" || ref.MessageID != "333333333333333333" {
		t.Fatalf("ref = %+v", ref)
	}
	if ref, err := ParseMessageRef("333333333333333333"); err != nil || ref.MessageID != "333333333333333333" {
		t.Fatalf("bare id: %+v, %v", ref, err)
	}
	var pe *ParseError
	if _, err := ParseMessageRef("https://example.com/x"); !errors.As(err, &pe) || pe.Key != "parse.message" {
		t.Fatalf("bad link error = %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		arg  string
		want time.Duration
		ok   bool
	}{
		{"1800", 30 * time.Minute, true},
		{"45m", 45 * time.Minute, true},
		{"1h30m", 90 * time.Minute, true},
		{"-5", -5 * time.Second, true},
		{"bientôt", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDuration(tc.arg)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("ParseDuration(%q) = %s, %v", tc.arg, got, err)
		}
	}
}

func TestParseCount(t *testing.T) {
	if n, err := ParseCount("32"); err != nil || n != 32 {
		t.Fatalf("ParseCount(32) = %d, %v", n, err)
	}
	var pe *ParseError
	if _, err := ParseCount("trente"); !errors.As(err, &pe) || pe.Key != "parse.number" {
		t.Fatalf("error = %v", err)
	}
}
