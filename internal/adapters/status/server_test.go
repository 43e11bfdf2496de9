package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/window"
)

type fakeSource struct {
	info *application.TournamentInfo
	err  error
}

func (f fakeSource) Info(_ context.Context, guildID string) (*application.TournamentInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.GuildID = guildID
	return &info, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"up", nil, http.StatusOK},
		{"down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(":0", fakeSource{}, fakePinger{tc.err})
			if rec := get(t, srv.Handler(), "/healthz"); rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestTournamentStatus(t *testing.T) {
	deadline := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)
	src := fakeSource{info: &application.TournamentInfo{
		ParticipantRole: application.RoleInfo{ID: "10", Name: "Participant"},
		CheckInDuration: 30 * time.Minute,
		Registered:      12,
		CheckIn: &application.WindowInfo{
			RunID:    "run-1",
			Snapshot: window.Snapshot{State: window.Open, Current: 4, Limit: 12},
			Deadline: deadline,
		},
	}}
	srv := NewServer(":0", src, fakePinger{})

	rec := get(t, srv.Handler(), "/guilds/g1/tournament")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got tournamentView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.GuildID != "g1" || got.Registered != 12 || got.CheckInSeconds != 1800 {
		t.Fatalf("view = %+v", got)
	}
	if got.ParticipantRole.Name != "Participant" || got.Registration != nil {
		t.Fatalf("view = %+v", got)
	}
	if got.CheckIn == nil || got.CheckIn.State != "open" || got.CheckIn.Deadline == nil || !got.CheckIn.Deadline.Equal(deadline) {
		t.Fatalf("checkin = %+v", got.CheckIn)
	}
}

func TestTournamentStatusError(t *testing.T) {
	srv := NewServer(":0", fakeSource{err: errors.New("db down")}, fakePinger{})
	if rec := get(t, srv.Handler(), "/guilds/g1/tournament"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}
