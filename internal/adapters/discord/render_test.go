package discord

import (
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
	"tournamentbot/internal/domain/window"
	pkgdiscord "tournamentbot/pkg/discord"
)

// keyT renders "key k=v k=v" so tests can assert on keys and data.
type keyT struct{}

func (keyT) T(_ string, key string, data map[string]any) string {
	parts := []string{key}
	for k, v := range data {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts[1:])
	return strings.Join(parts, " ")
}

func testRenderer() renderer {
	return renderer{t: keyT{}, locale: "fr", loc: time.UTC}
}

func TestRegistrationEmbed(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	h := &application.RunHandle{Kind: entities.RunRegistration, ChannelID: "42", OpensAt: now.Add(9500 * time.Millisecond)}
	r := testRenderer()

	pending := r.windowEmbed(h, window.Snapshot{State: window.Pending, Limit: 4}, now)
	if pending.Title != "progress.registration.title" || pending.Color != pkgdiscord.ColorRegistration {
		t.Fatalf("pending embed = %+v", pending)
	}
	if got := pending.Fields[0].Value; got != "progress.starting Delay=10" {
		t.Fatalf("pending progress = %q", got)
	}
	if pending.Footer.Text != "progress.footer" || !strings.Contains(pending.Description, "Channel=<#42>") {
		t.Fatalf("pending footer/description = %q / %q", pending.Footer.Text, pending.Description)
	}

	open := r.windowEmbed(h, window.Snapshot{State: window.Open, Current: 2, Limit: 4}, now)
	want := "`[==========>         ]`\n2/4 (50%) progress.registration.label"
	if got := open.Fields[0].Value; got != want {
		t.Fatalf("open progress = %q, want %q", got, want)
	}
	if len(open.Fields) != 1 {
		t.Fatalf("registration has extra fields: %+v", open.Fields)
	}

	closed := r.windowEmbed(h, window.Snapshot{State: window.Closed, Current: 4, Limit: 4, Reason: window.ReasonFull}, now)
	if closed.Color != pkgdiscord.ColorClosed || closed.Footer.Text != "progress.closed.full" {
		t.Fatalf("closed embed = %+v", closed)
	}
}

func TestCheckInEmbed(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	h := &application.RunHandle{Kind: entities.RunCheckIn, ChannelID: "7", OpensAt: now, Duration: 30 * time.Minute}
	r := testRenderer()

	pending := r.windowEmbed(h, window.Snapshot{State: window.Pending, Limit: 10}, now)
	if len(pending.Fields) != 2 || pending.Fields[1].Value != "0:30:00" {
		t.Fatalf("pending fields = %+v", pending.Fields)
	}

	failing := r.windowEmbed(h, window.Snapshot{State: window.Closed, Current: 3, Limit: 10, Failures: 2, Reason: window.ReasonDeadline}, now)
	if len(failing.Fields) != 3 {
		t.Fatalf("closed fields = %+v", failing.Fields)
	}
	if failing.Fields[1].Value != "0:00:00" || failing.Fields[2].Value != "progress.errors_count Count=2" {
		t.Fatalf("closed fields = %q %q", failing.Fields[1].Value, failing.Fields[2].Value)
	}
	if failing.Color != pkgdiscord.ColorClosed || failing.Footer.Text != "progress.closed.deadline" {
		t.Fatalf("closed embed = %+v", failing)
	}
}

func TestBulkContent(t *testing.T) {
	got := testRenderer().bulkContent("bulk.adding", 3, 1, 6)
	if !strings.HasPrefix(got, "bulk.progress Done=3 Failed=1 Percent=50 Title=bulk.adding Total=6\n") {
		t.Fatalf("bulk content = %q", got)
	}
	if !strings.HasSuffix(got, "`["+strings.Repeat("=", 15)+">"+strings.Repeat(" ", 14)+"]`") {
		t.Fatalf("bulk bar = %q", got)
	}
}

func TestDenyListText(t *testing.T) {
	r := testRenderer()
	if got := r.denyListText(nil); got != "ban.list_empty" {
		t.Fatalf("empty = %q", got)
	}
	got := r.denyListText([]application.DenyEntry{
		{Participant: entities.Participant{UserID: "1", DisplayName: "Ness"}, Present: true},
		{Participant: entities.Participant{UserID: "2"}},
	})
	want := "ban.list_header Count=2\nban.list_entry ID=1 Name=Ness\nban.list_absent ID=2"
	if got != want {
		t.Fatalf("list = %q, want %q", got, want)
	}
}

func TestInfoEmbed(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	info := &application.TournamentInfo{
		ParticipantRole: application.RoleInfo{ID: "10", Name: "Participant"},
		TournamentRole:  application.RoleInfo{ID: "11", Lost: true},
		CheckInDuration: 45 * time.Minute,
		Registered:      3,
		CheckIn: &application.WindowInfo{
			Snapshot: window.Snapshot{State: window.Open, Current: 1, Limit: 3},
			Deadline: now.Add(30 * time.Minute),
		},
	}
	e := testRenderer().infoEmbed(info, now)
	values := map[string]string{}
	for _, f := range e.Fields {
		values[f.Name] = f.Value
	}
	if values["settings.participant_role"] != "<@&10> (Participant)" {
		t.Errorf("participant role = %q", values["settings.participant_role"])
	}
	if values["settings.tournament_role"] != "info.lost ID=11" {
		t.Errorf("tournament role = %q", values["settings.tournament_role"])
	}
	if values["settings.checkin_role"] != "info.unset" {
		t.Errorf("checkin role = %q", values["settings.checkin_role"])
	}
	if values["settings.checkin_duration"] != "0:45:00" {
		t.Errorf("duration = %q", values["settings.checkin_duration"])
	}
	if values["info.windows"] != "info.checkin Current=1 End=20:30 Limit=3 State=open" {
		t.Errorf("windows = %q", values["info.windows"])
	}
	if _, ok := values["info.history"]; ok {
		t.Errorf("empty history rendered")
	}
}
