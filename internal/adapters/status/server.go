// Package status exposes a read-only status API of the tournaments.
package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
)

const shutdownTimeout = 5 * time.Second

// StatusSource is the part of the tournament use case the API reads.
type StatusSource interface {
	Info(ctx context.Context, guildID string) (*application.TournamentInfo, error)
}

// Pinger checks the store; *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	addr   string
	engine *gin.Engine
}

func NewServer(addr string, source StatusSource, db Pinger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/healthz", health(db))
	r.GET("/guilds/:guildID/tournament", tournament(source))
	return &Server{addr: addr, engine: r}
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("🟢 Serveur de statut démarré")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("status server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("status server: %w", err)
	}
	log.Info().Msg("🔴 Serveur de statut arrêté")
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("HTTP")
	}
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			log.Warn().Err(err).Msg("⚠️ Base de données injoignable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}

type roleView struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Lost bool   `json:"lost,omitempty"`
}

type windowView struct {
	RunID    string     `json:"run_id"`
	State    string     `json:"state"`
	Current  int        `json:"current"`
	Limit    int        `json:"limit"`
	Failures int        `json:"failures,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

type runView struct {
	ID       string    `json:"id"`
	Kind     string    `json:"kind"`
	Capacity int       `json:"capacity"`
	Accepted int       `json:"accepted"`
	Reason   string    `json:"reason,omitempty"`
	OpenedAt time.Time `json:"opened_at"`
}

type tournamentView struct {
	GuildID              string      `json:"guild_id"`
	ParticipantRole      roleView    `json:"participant_role"`
	TournamentRole       roleView    `json:"tournament_role"`
	CheckInRole          roleView    `json:"checkin_role"`
	InscriptionChannelID string      `json:"inscription_channel_id,omitempty"`
	CheckInChannelID     string      `json:"checkin_channel_id,omitempty"`
	CheckInSeconds       int64       `json:"checkin_seconds"`
	Registered           int         `json:"registered"`
	Blacklisted          int         `json:"blacklisted"`
	Staged               int         `json:"staged"`
	Registration         *windowView `json:"registration,omitempty"`
	CheckIn              *windowView `json:"checkin,omitempty"`
	LastRegistration     *runView    `json:"last_registration,omitempty"`
	LastCheckIn          *runView    `json:"last_checkin,omitempty"`
}

func tournament(source StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := source.Info(c.Request.Context(), c.Param("guildID"))
		if err != nil {
			log.Error().Err(err).Str("guild", c.Param("guildID")).Msg("❌ Statut indisponible")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, toView(info))
	}
}

func toView(info *application.TournamentInfo) tournamentView {
	return tournamentView{
		GuildID:              info.GuildID,
		ParticipantRole:      roleView(info.ParticipantRole),
		TournamentRole:       roleView(info.TournamentRole),
		CheckInRole:          roleView(info.CheckInRole),
		InscriptionChannelID: info.InscriptionChannelID,
		CheckInChannelID:     info.CheckInChannelID,
		CheckInSeconds:       int64(info.CheckInDuration / time.Second),
		Registered:           info.Registered,
		Blacklisted:          info.Blacklisted,
		Staged:               info.Staged,
		Registration:         toWindowView(info.Registration),
		CheckIn:              toWindowView(info.CheckIn),
		LastRegistration:     toRunView(info.LastRegistration),
		LastCheckIn:          toRunView(info.LastCheckIn),
	}
}

func toWindowView(w *application.WindowInfo) *windowView {
	if w == nil {
		return nil
	}
	v := &windowView{
		RunID:    w.RunID,
		State:    w.Snapshot.State.String(),
		Current:  w.Snapshot.Current,
		Limit:    w.Snapshot.Limit,
		Failures: w.Snapshot.Failures,
	}
	if !w.Deadline.IsZero() {
		d := w.Deadline
		v.Deadline = &d
	}
	return v
}

func toRunView(r *entities.Run) *runView {
	if r == nil {
		return nil
	}
	return &runView{
		ID:       r.ID.String(),
		Kind:     string(r.Kind),
		Capacity: r.Capacity,
		Accepted: r.Accepted,
		Reason:   r.CloseReason,
		OpenedAt: r.OpenedAt,
	}
}
