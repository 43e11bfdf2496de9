// Package tz resolves the display timezone of the bot.
package tz

import (
	"fmt"
	"time"
)

// Default is the zone used when none is configured.
const Default = "Europe/Paris"

// Load returns the location called name, Default when name is empty.
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = Default
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("tz: load %s: %w", name, err)
	}
	return loc, nil
}
