package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tournamentbot/internal/application"
	"tournamentbot/internal/domain/entities"
)

// bulkRefresh is how often a bulk role update message is edited.
const bulkRefresh = 5 * time.Second

// menu is a live progress embed; its owner may cancel the run with ❌.
type menu struct {
	guildID string
	runID   uuid.UUID
	kind    entities.RunKind
	ownerID string
	asking  bool
}

type menus struct {
	mu    sync.Mutex
	items map[string]*menu
}

func newMenus() *menus {
	return &menus{items: make(map[string]*menu)}
}

func (m *menus) add(messageID string, mn menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[messageID] = &mn
}

func (m *menus) remove(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, messageID)
}

// claim returns the menu of messageID when userID owns it and no cancel
// prompt is already open on it.
func (m *menus) claim(messageID, userID string) (menu, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mn, ok := m.items[messageID]
	if !ok || mn.ownerID != userID || mn.asking {
		return menu{}, false
	}
	mn.asking = true
	return *mn, true
}

func (m *menus) release(messageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mn, ok := m.items[messageID]; ok {
		mn.asking = false
	}
}

// showWindow posts the progress menu of handle and keeps it updated until
// the close sequence ran.
func (h *Handler) showWindow(ctx context.Context, req *request, handle *application.RunHandle) {
	now := time.Now()
	msg, err := h.s.ChannelMessageSendEmbed(req.msg.ChannelID, h.render.windowEmbed(handle, handle.Snapshot(), now), discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("guild", handle.GuildID).Msg("⚠️ Menu de progression non envoyé")
		return
	}
	if err := h.s.MessageReactionAdd(msg.ChannelID, msg.ID, noEmoji, discordgo.WithContext(ctx)); err != nil {
		log.Warn().Err(err).Str("guild", handle.GuildID).Msg("⚠️ Réaction impossible")
	}
	h.menus.add(msg.ID, menu{guildID: handle.GuildID, runID: handle.ID, kind: handle.Kind, ownerID: req.msg.Author.ID})
	go h.followWindow(ctx, msg, handle)
}

func (h *Handler) followWindow(ctx context.Context, msg *discordgo.Message, handle *application.RunHandle) {
	defer h.menus.remove(msg.ID)
	ticker := time.NewTicker(h.opts.ProgressInterval)
	defer ticker.Stop()

	var last string
	edit := func(ctx context.Context) {
		embed := h.render.windowEmbed(handle, handle.Snapshot(), time.Now())
		key := embedKey(embed)
		if key == last {
			return
		}
		if _, err := h.s.ChannelMessageEditEmbed(msg.ChannelID, msg.ID, embed, discordgo.WithContext(ctx)); err != nil {
			log.Debug().Err(err).Str("guild", handle.GuildID).Msg("Menu de progression non mis à jour")
			return
		}
		last = key
	}

	for {
		select {
		case <-handle.Finished():
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			edit(ctx)
			cancel()
			return
		case <-ticker.C:
			edit(ctx)
		}
	}
}

func embedKey(e *discordgo.MessageEmbed) string {
	key := e.Title + e.Description
	for _, f := range e.Fields {
		key += "|" + f.Value
	}
	if e.Footer != nil {
		key += "|" + e.Footer.Text
	}
	return key
}

// bulkProgress keeps a message updated while a bulk role update runs. The
// returned stop renders the final tally.
func (h *Handler) bulkProgress(ctx context.Context, channelID, titleKey string, tracker *application.Tracker) (stop func()) {
	msg, err := h.s.ChannelMessageSend(channelID, h.render.bulkTracker(titleKey, tracker), discordgo.WithContext(ctx))
	if err != nil {
		log.Warn().Err(err).Str("channel", channelID).Msg("⚠️ Message de progression non envoyé")
		return func() {}
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(bulkRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if _, err := h.s.ChannelMessageEdit(channelID, msg.ID, h.render.bulkTracker(titleKey, tracker), discordgo.WithContext(ctx)); err != nil {
					log.Debug().Err(err).Msg("Progression non mise à jour")
				}
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, err := h.s.ChannelMessageEdit(channelID, msg.ID, h.render.bulkTracker(titleKey, tracker), discordgo.WithContext(ctx)); err != nil {
			log.Debug().Err(err).Msg("Progression non mise à jour")
		}
	}
}
