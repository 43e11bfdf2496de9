package discord

import (
	"github.com/bwmarrin/discordgo"
)

// access is the capability a command requires.
type access int

const (
	accessModerator access = iota
	accessAdmin
	accessMember
)

func hasPermission(perms, need int64) bool {
	if perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&need == need
}

// allowed checks the invoking member's channel permissions against a.
func allowed(perms int64, a access) bool {
	switch a {
	case accessMember:
		return true
	case accessAdmin:
		return perms&discordgo.PermissionAdministrator != 0
	default:
		return hasPermission(perms, discordgo.PermissionManageMessages)
	}
}
