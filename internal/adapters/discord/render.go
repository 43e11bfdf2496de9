package discord

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
	"tournamentbot/internal/ports/output"
	pkgdiscord "tournamentbot/pkg/discord"
	"tournamentbot/pkg/progress"
)

const (
	windowBarWidth = 20
	bulkBarWidth   = 30
)

// renderer turns use case results into Discord content.
type renderer struct {
	t      output.T
	locale string
	loc    *time.Location
}

func (r renderer) tr(key string, data map[string]any) string {
	return r.t.T(r.locale, key, data)
}

func (r renderer) errorMessage(err error) string {
	return pkgdiscord.ErrorMessage(r.t, r.locale, err)
}

// windowEmbed renders the progress menu of a registration or check-in.
func (r renderer) windowEmbed(h *application.RunHandle, snap window.Snapshot, now time.Time) *discordgo.MessageEmbed {
	prefix, color := "progress.registration", pkgdiscord.ColorRegistration
	if h.Kind == entities.RunCheckIn {
		prefix, color = "progress.checkin", pkgdiscord.ColorCheckIn
	}

	var progressValue string
	switch snap.State {
	case window.Pending:
		wait := int(math.Ceil(h.OpensAt.Sub(now).Seconds()))
		progressValue = r.tr("progress.starting", map[string]any{"Delay": max(wait, 0)})
	default:
		progressValue = progress.Line(snap.Current, snap.Limit, windowBarWidth, r.tr(prefix+".label", nil))
	}

	fields := []pkgdiscord.Field{{Name: r.tr("progress.field", nil), Value: progressValue}}
	if h.Kind == entities.RunCheckIn {
		fields = append(fields, pkgdiscord.Field{
			Name:   r.tr("progress.remaining", nil),
			Value:  pkgdiscord.FormatRemaining(remaining(h, snap, now)),
			Inline: true,
		})
		if snap.Failures > 0 {
			fields = append(fields, pkgdiscord.Field{
				Name:   r.tr("progress.errors", nil),
				Value:  r.tr("progress.errors_count", map[string]any{"Count": snap.Failures}),
				Inline: true,
			})
		}
	}

	footer := r.tr("progress.footer", nil)
	if snap.State == window.Closed {
		color = pkgdiscord.ColorClosed
		footer = r.tr("progress.closed."+string(snap.Reason), nil)
	}
	description := r.tr(prefix+".desc", map[string]any{"Channel": pkgdiscord.ChannelMention(h.ChannelID)})
	return pkgdiscord.BuildEmbed(r.tr(prefix+".title", nil), description, color, footer, fields...)
}

func remaining(h *application.RunHandle, snap window.Snapshot, now time.Time) time.Duration {
	switch snap.State {
	case window.Pending:
		return h.Duration
	case window.Open:
		return max(h.Deadline().Sub(now), 0)
	}
	return 0
}

func (r renderer) bulkTracker(titleKey string, tracker *application.Tracker) string {
	processed, failed, total := tracker.Progress()
	return r.bulkContent(titleKey, processed, failed, total)
}

// bulkContent renders the progress message of a bulk role update.
func (r renderer) bulkContent(titleKey string, processed, failed, total int) string {
	bar := progress.Render(processed, total, bulkBarWidth)
	return r.tr("bulk.progress", map[string]any{
		"Title":   r.tr(titleKey, nil),
		"Done":    processed,
		"Total":   total,
		"Failed":  failed,
		"Percent": progress.FormatPercent(bar.Percent),
	}) + "\n" + bar.String()
}

func (r renderer) roleLine(info application.RoleInfo) string {
	switch {
	case info.ID == "":
		return r.tr("info.unset", nil)
	case info.Lost:
		return r.tr("info.lost", map[string]any{"ID": info.ID})
	}
	return fmt.Sprintf("%s (%s)", pkgdiscord.RoleMention(info.ID), info.Name)
}

func (r renderer) channelLine(id string) string {
	if id == "" {
		return r.tr("info.unset", nil)
	}
	return pkgdiscord.ChannelMention(id)
}

// settingsEmbed shows the configuration part of info.
func (r renderer) settingsEmbed(info *application.TournamentInfo) *discordgo.MessageEmbed {
	return pkgdiscord.BuildEmbed(r.tr("settings.title", nil), "", pkgdiscord.ColorInfo, "", r.settingsFields(info)...)
}

func (r renderer) settingsFields(info *application.TournamentInfo) []pkgdiscord.Field {
	return []pkgdiscord.Field{
		{Name: r.tr("settings.participant_role", nil), Value: r.roleLine(info.ParticipantRole), Inline: true},
		{Name: r.tr("settings.tournament_role", nil), Value: r.roleLine(info.TournamentRole), Inline: true},
		{Name: r.tr("settings.checkin_role", nil), Value: r.roleLine(info.CheckInRole), Inline: true},
		{Name: r.tr("settings.inscription_channel", nil), Value: r.channelLine(info.InscriptionChannelID), Inline: true},
		{Name: r.tr("settings.checkin_channel", nil), Value: r.channelLine(info.CheckInChannelID), Inline: true},
		{Name: r.tr("settings.checkin_duration", nil), Value: pkgdiscord.FormatRemaining(info.CheckInDuration), Inline: true},
	}
}

// infoEmbed is the tinfo view: configuration, list sizes and windows.
func (r renderer) infoEmbed(info *application.TournamentInfo, now time.Time) *discordgo.MessageEmbed {
	fields := r.settingsFields(info)
	fields = append(fields, pkgdiscord.Field{
		Name: r.tr("info.lists", nil),
		Value: r.tr("info.lists_value", map[string]any{
			"Registered":  info.Registered,
			"Blacklisted": info.Blacklisted,
			"Staged":      info.Staged,
		}),
	})

	var windows []string
	if w := info.Registration; w != nil {
		windows = append(windows, r.tr("info.registration", map[string]any{
			"State":   w.Snapshot.State.String(),
			"Current": w.Snapshot.Current,
			"Limit":   w.Snapshot.Limit,
		}))
	}
	if w := info.CheckIn; w != nil {
		data := map[string]any{
			"State":   w.Snapshot.State.String(),
			"Current": w.Snapshot.Current,
			"Limit":   w.Snapshot.Limit,
			"End":     "-",
		}
		if !w.Deadline.IsZero() {
			data["End"] = pkgdiscord.FormatClock(w.Deadline, now, r.loc)
		}
		windows = append(windows, r.tr("info.checkin", data))
	}
	if len(windows) == 0 {
		windows = append(windows, r.tr("info.no_window", nil))
	}
	fields = append(fields, pkgdiscord.Field{Name: r.tr("info.windows", nil), Value: strings.Join(windows, "\n")})

	var history []string
	for _, run := range []*entities.Run{info.LastRegistration, info.LastCheckIn} {
		if run == nil || run.ClosedAt.IsZero() {
			continue
		}
		history = append(history, r.tr("info.last_run", map[string]any{
			"Kind":     r.tr("info.kind."+string(run.Kind), nil),
			"Accepted": run.Accepted,
			"Capacity": run.Capacity,
			"Reason":   run.CloseReason,
			"Closed":   pkgdiscord.FormatClock(run.ClosedAt, now, r.loc),
		}))
	}
	fields = append(fields, pkgdiscord.Field{Name: r.tr("info.history", nil), Value: strings.Join(history, "\n")})

	return pkgdiscord.BuildEmbed(r.tr("info.title", nil), "", pkgdiscord.ColorInfo, "", fields...)
}

// denyListText renders the deny-list, one member per line.
func (r renderer) denyListText(entries []application.DenyEntry) string {
	if len(entries) == 0 {
		return r.tr("ban.list_empty", nil)
	}
	var b strings.Builder
	b.WriteString(r.tr("ban.list_header", map[string]any{"Count": len(entries)}))
	for _, e := range entries {
		b.WriteString("\n")
		if e.Present {
			b.WriteString(r.tr("ban.list_entry", map[string]any{"Name": e.Participant.DisplayName, "ID": e.Participant.UserID}))
		} else {
			b.WriteString(r.tr("ban.list_absent", map[string]any{"ID": e.Participant.UserID}))
		}
	}
	return b.String()
}
