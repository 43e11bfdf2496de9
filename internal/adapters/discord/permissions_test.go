package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		perms int64
		a     access
		want  bool
	}{
		{discordgo.PermissionAdministrator, accessAdmin, true},
		{discordgo.PermissionAdministrator, accessModerator, true},
		{discordgo.PermissionManageMessages, accessModerator, true},
		{discordgo.PermissionManageMessages, accessAdmin, false},
		{discordgo.PermissionSendMessages, accessModerator, false},
		{0, accessMember, true},
	}
	for _, tc := range cases {
		if got := allowed(tc.perms, tc.a); got != tc.want {
			t.Errorf("allowed(%b, %d) = %v, want %v", tc.perms, tc.a, got, tc.want)
		}
	}
}

func TestRoleBelow(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "everyone", Position: 0},
		{ID: "participant", Position: 2},
		{ID: "bot", Position: 5},
		{ID: "admin", Position: 8},
	}
	cases := []struct {
		role string
		want bool
	}{
		{"participant", true},
		{"bot", false},
		{"admin", false},
		{"deleted", false},
	}
	for _, tc := range cases {
		if got := roleBelow(roles, []string{"bot"}, tc.role); got != tc.want {
			t.Errorf("roleBelow(%s) = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestSendOverwrite(t *testing.T) {
	existing := &discordgo.PermissionOverwrite{
		Allow: discordgo.PermissionAddReactions,
		Deny:  discordgo.PermissionViewChannel | discordgo.PermissionAttachFiles,
	}
	allow, deny := sendOverwrite(existing, true)
	if allow&discordgo.PermissionSendMessages == 0 || allow&discordgo.PermissionAddReactions == 0 {
		t.Fatalf("open allow = %b", allow)
	}
	if deny&discordgo.PermissionViewChannel != 0 || deny&discordgo.PermissionAttachFiles == 0 {
		t.Fatalf("open deny = %b", deny)
	}

	allow, deny = sendOverwrite(nil, false)
	if allow != discordgo.PermissionViewChannel || deny != discordgo.PermissionSendMessages {
		t.Fatalf("close = %b / %b", allow, deny)
	}
}

func TestCompareSnowflakes(t *testing.T) {
	if compareSnowflakes("99", "100") >= 0 || compareSnowflakes("200", "100") <= 0 || compareSnowflakes("5", "5") != 0 {
		t.Fatal("snowflakes must compare numerically")
	}
}
