package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"tournamentbot/internal/domain/entities"
)

type fakeGuildRepo struct {
	mu       sync.Mutex
	settings map[string]*entities.GuildSettings
	failNext error
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{settings: make(map[string]*entities.GuildSettings)}
}

func (r *fakeGuildRepo) get(guildID string) *entities.GuildSettings {
	g, ok := r.settings[guildID]
	if !ok {
		g = &entities.GuildSettings{GuildID: guildID}
		r.settings[guildID] = g
	}
	return g
}

func (r *fakeGuildRepo) list(g *entities.GuildSettings, kind entities.ListKind) *[]string {
	switch kind {
	case entities.ListBlacklisted:
		return &g.Blacklisted
	case entities.ListCurrent:
		return &g.Current
	default:
		return &g.NextToBlacklist
	}
}

func (r *fakeGuildRepo) Get(_ context.Context, guildID string) (*entities.GuildSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.get(guildID)
	cp.Blacklisted = slices.Clone(cp.Blacklisted)
	cp.Current = slices.Clone(cp.Current)
	cp.NextToBlacklist = slices.Clone(cp.NextToBlacklist)
	return &cp, nil
}

func (r *fakeGuildRepo) SetRole(_ context.Context, guildID string, kind entities.RoleKind, roleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.get(guildID)
	switch kind {
	case entities.RoleParticipant:
		g.ParticipantRoleID = roleID
	case entities.RoleTournament:
		g.TournamentRoleID = roleID
	case entities.RoleCheckIn:
		g.CheckInRoleID = roleID
	}
	return nil
}

func (r *fakeGuildRepo) SetChannel(_ context.Context, guildID string, kind entities.ChannelKind, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.get(guildID)
	if kind == entities.ChannelInscription {
		g.InscriptionChannelID = channelID
	} else {
		g.CheckInChannelID = channelID
	}
	return nil
}

func (r *fakeGuildRepo) SetCheckInDuration(_ context.Context, guildID string, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(guildID).CheckInDuration = d
	return nil
}

func (r *fakeGuildRepo) SetList(_ context.Context, guildID string, kind entities.ListKind, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.list(r.get(guildID), kind) = slices.Clone(ids)
	return nil
}

func (r *fakeGuildRepo) AppendToList(_ context.Context, guildID string, kind entities.ListKind, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext; err != nil {
		r.failNext = nil
		return false, err
	}
	l := r.list(r.get(guildID), kind)
	if slices.Contains(*l, id) {
		return false, nil
	}
	*l = append(*l, id)
	return true, nil
}

func (r *fakeGuildRepo) RemoveFromList(_ context.Context, guildID string, kind entities.ListKind, ids ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := r.list(r.get(guildID), kind)
	removed := 0
	*l = slices.DeleteFunc(*l, func(id string) bool {
		if slices.Contains(ids, id) {
			removed++
			return true
		}
		return false
	})
	return removed, nil
}

func (r *fakeGuildRepo) snapshot(guildID string) entities.GuildSettings {
	g, _ := r.Get(context.Background(), guildID)
	return *g
}

type fakeRunRepo struct {
	mu       sync.Mutex
	created  []entities.Run
	finished []entities.Run
}

func (r *fakeRunRepo) Create(_ context.Context, run *entities.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, *run)
	return nil
}

func (r *fakeRunRepo) Finish(_ context.Context, run *entities.Run) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, *run)
	return nil
}

func (r *fakeRunRepo) Latest(_ context.Context, guildID string, kind entities.RunKind) (*entities.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.finished) - 1; i >= 0; i-- {
		if run := r.finished[i]; run.GuildID == guildID && run.Kind == kind {
			return &run, nil
		}
	}
	return nil, nil
}

func (r *fakeRunRepo) lastFinished() (entities.Run, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.finished) == 0 {
		return entities.Run{}, false
	}
	return r.finished[len(r.finished)-1], true
}

type sendChange struct {
	ChannelID string
	RoleID    string
	Allow     bool
}

type roleChange struct {
	UserID string
	RoleID string
	Add    bool
}

type fakePlatform struct {
	mu          sync.Mutex
	roles       map[string]string          // id -> name
	channels    map[string]bool            // existing channels
	aboveBot    map[string]bool            // roles the bot cannot assign
	members     map[string]string          // id -> display name
	memberRoles map[string]map[string]bool // user -> roles
	failRole    map[string]error           // user -> error on role change
	failNick    map[string]error           // user -> error on nickname reset
	history     []entities.Message
	noHistory   bool

	sends        []sendChange
	changes      []roleChange
	nickResets   []string
	historyCalls int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		roles:       map[string]string{},
		channels:    map[string]bool{},
		aboveBot:    map[string]bool{},
		members:     map[string]string{},
		memberRoles: map[string]map[string]bool{},
		failRole:    map[string]error{},
		failNick:    map[string]error{},
	}
}

func (p *fakePlatform) addMember(id string, roles ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.members[id] = "user-" + id
	set := map[string]bool{}
	for _, r := range roles {
		set[r] = true
	}
	p.memberRoles[id] = set
}

func (p *fakePlatform) Role(_ context.Context, _, roleID string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.roles[roleID]
	return name, ok, nil
}

func (p *fakePlatform) ChannelExists(_ context.Context, _, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels[channelID], nil
}

func (p *fakePlatform) CanAssignRole(_ context.Context, _, roleID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.aboveBot[roleID], nil
}

func (p *fakePlatform) CanManageChannel(_ context.Context, _, channelID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channels[channelID], nil
}

func (p *fakePlatform) CanReadHistory(context.Context, string, string) (bool, error) {
	return !p.noHistory, nil
}

func (p *fakePlatform) RoleMembers(_ context.Context, _, roleID string) ([]entities.Participant, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entities.Participant
	for id, roles := range p.memberRoles {
		if roles[roleID] {
			out = append(out, entities.Participant{UserID: id, DisplayName: p.members[id]})
		}
	}
	slices.SortFunc(out, func(a, b entities.Participant) int { return compareIDs(a.UserID, b.UserID) })
	return out, nil
}

// compareIDs orders numeric ids numerically so that "10" sorts after "9".
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (p *fakePlatform) Member(_ context.Context, _, userID string) (entities.Participant, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.members[userID]
	return entities.Participant{UserID: userID, DisplayName: name}, ok, nil
}

func (p *fakePlatform) MemberHasRole(_ context.Context, _, userID, roleID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.memberRoles[userID][roleID], nil
}

func (p *fakePlatform) change(userID, roleID string, add bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failRole[userID]; err != nil {
		return err
	}
	if _, ok := p.memberRoles[userID]; !ok {
		p.memberRoles[userID] = map[string]bool{}
	}
	p.memberRoles[userID][roleID] = add
	p.changes = append(p.changes, roleChange{UserID: userID, RoleID: roleID, Add: add})
	return nil
}

func (p *fakePlatform) AddRole(_ context.Context, _, userID, roleID, _ string) error {
	return p.change(userID, roleID, true)
}

func (p *fakePlatform) RemoveRole(_ context.Context, _, userID, roleID, _ string) error {
	return p.change(userID, roleID, false)
}

func (p *fakePlatform) SetChannelSend(_ context.Context, channelID, roleID string, allow bool, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sends = append(p.sends, sendChange{ChannelID: channelID, RoleID: roleID, Allow: allow})
	return nil
}

func (p *fakePlatform) History(_ context.Context, channelID, afterID string, limit int) ([]entities.Message, string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.historyCalls++
	var out []entities.Message
	started := afterID == ""
	for i, m := range p.history {
		if !started {
			started = m.MessageID == afterID
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			if i == len(p.history)-1 {
				return out, "", nil
			}
			return out, m.MessageID, nil
		}
	}
	return out, "", nil
}

func (p *fakePlatform) ResetNickname(_ context.Context, _, userID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failNick[userID]; err != nil {
		return err
	}
	p.nickResets = append(p.nickResets, userID)
	return nil
}

func (p *fakePlatform) resetNicknames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.nickResets)
}

func (p *fakePlatform) removedRoles(roleID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, c := range p.changes {
		if c.RoleID == roleID && !c.Add {
			out = append(out, c.UserID)
		}
	}
	return out
}

func (p *fakePlatform) sendChanges() []sendChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sends)
}

type report struct {
	ChannelID string
	Content   string
	Files     []entities.Artifact
}

type fakeNotifier struct {
	mu        sync.Mutex
	announces []string
	acks      []string
	reports   []report
}

func (n *fakeNotifier) Announce(_ context.Context, channelID, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.announces = append(n.announces, content)
	return nil
}

func (n *fakeNotifier) Acknowledge(_ context.Context, _, messageID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.acks = append(n.acks, messageID)
	return nil
}

func (n *fakeNotifier) Report(_ context.Context, channelID, content string, files ...entities.Artifact) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report{ChannelID: channelID, Content: content, Files: files})
	return nil
}

func (n *fakeNotifier) acked() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.acks)
}

// file returns the content of the last reported artifact called name.
func (n *fakeNotifier) file(name string) (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.reports) - 1; i >= 0; i-- {
		for _, f := range n.reports[i].Files {
			if f.Name == name {
				return string(f.Content), true
			}
		}
	}
	return "", false
}

// keyTranslator renders the key followed by its data, enough to assert on.
type keyTranslator struct{}

func (keyTranslator) T(_ string, key string, data map[string]any) string {
	if len(data) == 0 {
		return key
	}
	return fmt.Sprintf("%s %v", key, data)
}

const (
	guildID           = "g1"
	participantRoleID = "r-participant"
	tournamentRoleID  = "r-tournament"
	checkInRoleID     = "r-check"
	inscriptionChanID = "c-inscription"
	checkInChanID     = "c-check"
	reportChanID      = "c-mods"
)

type fixture struct {
	svc      *TournamentService
	repo     *fakeGuildRepo
	runs     *fakeRunRepo
	platform *fakePlatform
	notifier *fakeNotifier
}

// newFixture returns a fully configured guild with no open delay.
func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeGuildRepo(),
		runs:     &fakeRunRepo{},
		platform: newFakePlatform(),
		notifier: &fakeNotifier{},
	}
	f.platform.roles[participantRoleID] = "Participant"
	f.platform.roles[tournamentRoleID] = "Tournoi"
	f.platform.roles[checkInRoleID] = "Check"
	f.platform.channels[inscriptionChanID] = true
	f.platform.channels[checkInChanID] = true

	g := f.repo.get(guildID)
	g.ParticipantRoleID = participantRoleID
	g.TournamentRoleID = tournamentRoleID
	g.CheckInRoleID = checkInRoleID
	g.InscriptionChannelID = inscriptionChanID
	g.CheckInChannelID = checkInChanID

	f.svc = NewTournamentService(f.repo, f.runs, f.platform, f.notifier, keyTranslator{}, Options{
		CheckInTick: 5 * time.Millisecond,
	})
	return f
}

func message(channelID, authorID, content string, roles ...string) entities.Message {
	return entities.Message{
		GuildID:        guildID,
		ChannelID:      channelID,
		MessageID:      "m-" + authorID + "-" + content,
		AuthorID:       authorID,
		AuthorName:     "user-" + authorID,
		AuthorUsername: "user_" + authorID,
		AuthorRoleIDs:  roles,
		Content:        content,
	}
}

var errBoom = errors.New("boom")
