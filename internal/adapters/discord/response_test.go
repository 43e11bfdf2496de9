package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestResolveDisplayName(t *testing.T) {
	cases := []struct {
		member *discordgo.Member
		want   string
	}{
		{nil, ""},
		{&discordgo.Member{User: &discordgo.User{Username: "ness"}}, "ness"},
		{&discordgo.Member{User: &discordgo.User{Username: "ness", GlobalName: "Ness"}}, "Ness"},
		{&discordgo.Member{Nick: "PK Thunder", User: &discordgo.User{Username: "ness", GlobalName: "Ness"}}, "PK Thunder"},
	}
	for _, tc := range cases {
		if got := resolveDisplayName(tc.member); got != tc.want {
			t.Errorf("resolveDisplayName() = %q, want %q", got, tc.want)
		}
	}
}

func TestToMessageUsesMemberRoles(t *testing.T) {
	m := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   "Je participe",
		Author:    &discordgo.User{ID: "u1", Username: "lucas"},
	}
	msg := toMessage(m, &discordgo.Member{Nick: "Lucas", Roles: []string{"r1"}})
	if msg.AuthorName != "Lucas" || !msg.HasRole("r1") || msg.AuthorID != "u1" {
		t.Fatalf("msg = %+v", msg)
	}
	if plain := toMessage(m, nil); plain.AuthorName != "lucas" || plain.HasRole("r1") {
		t.Fatalf("plain = %+v", plain)
	}
}
