package domain

import "errors"

// testPlayer is a configurable Player stub for unit tests of the pure
// domain pieces. Engine-level behavior is covered by the external tests
// against the in-memory world.
type testPlayer struct {
	id        PlayerID
	connected bool
	alive     bool
	level     int
	gear      int
	expansion int

	restricted bool
	penalties  map[Penalty]struct{}
	requested  ContentSet
	roles      RoleMask
	state      PlayerState
	partyID    PartyID

	ignores    map[PlayerID]struct{}
	completed  map[ContentID]struct{}
	lockedOut  bool
	access     LockStatus
	mapID      string
	position   Position
	teleported bool
}

func newTestPlayer(id PlayerID, level, gear int) *testPlayer {
	return &testPlayer{
		id:        id,
		connected: true,
		alive:     true,
		level:     level,
		gear:      gear,
		penalties: make(map[Penalty]struct{}),
		requested: make(ContentSet),
		ignores:   make(map[PlayerID]struct{}),
		completed: make(map[ContentID]struct{}),
	}
}

func (p *testPlayer) ID() PlayerID    { return p.id }
func (p *testPlayer) Connected() bool { return p.connected }
func (p *testPlayer) Alive() bool     { return p.alive }
func (p *testPlayer) Level() int      { return p.level }
func (p *testPlayer) GearScore() int  { return p.gear }
func (p *testPlayer) Expansion() int  { return p.expansion }

func (p *testPlayer) InRestrictedActivity() bool { return p.restricted }

func (p *testPlayer) HasPenalty(penalty Penalty) bool {
	_, ok := p.penalties[penalty]
	return ok
}
func (p *testPlayer) ApplyPenalty(penalty Penalty) { p.penalties[penalty] = struct{}{} }
func (p *testPlayer) ClearPenalty(penalty Penalty) { delete(p.penalties, penalty) }

func (p *testPlayer) RequestedContent() ContentSet     { return p.requested }
func (p *testPlayer) SetRequestedContent(s ContentSet) { p.requested = s }

func (p *testPlayer) Roles() RoleMask         { return p.roles }
func (p *testPlayer) SetRoles(mask RoleMask)  { p.roles = mask }
func (p *testPlayer) State() PlayerState      { return p.state }
func (p *testPlayer) SetState(s PlayerState)  { p.state = s }
func (p *testPlayer) PartyID() PartyID        { return p.partyID }

func (p *testPlayer) Ignores(other PlayerID) bool {
	_, ok := p.ignores[other]
	return ok
}

func (p *testPlayer) HasCompleted(id ContentID) bool {
	_, ok := p.completed[id]
	return ok
}

func (p *testPlayer) LockedOut(string, Difficulty) bool { return p.lockedOut }

func (p *testPlayer) AccessStatus(string, Difficulty) LockStatus { return p.access }

func (p *testPlayer) MapID() string        { return p.mapID }
func (p *testPlayer) Position() Position   { return p.position }
func (p *testPlayer) Teleported() bool     { return p.teleported }
func (p *testPlayer) SetTeleported(v bool) { p.teleported = v }

// testWorld resolves only players; party operations are unsupported.
type testWorld struct {
	players map[PlayerID]*testPlayer
}

func newTestWorld(players ...*testPlayer) *testWorld {
	w := &testWorld{players: make(map[PlayerID]*testPlayer)}
	for _, p := range players {
		w.players[p.id] = p
	}
	return w
}

func (w *testWorld) Player(id PlayerID) (Player, bool) {
	p, ok := w.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

func (w *testWorld) Party(PartyID) (Party, bool) { return nil, false }

func (w *testWorld) CreateParty(PlayerID) (Party, error) {
	return nil, errors.New("test world has no parties")
}

func (w *testWorld) AddMember(PartyID, PlayerID) error {
	return errors.New("test world has no parties")
}

func (w *testWorld) RemoveMember(PartyID, PlayerID) error {
	return errors.New("test world has no parties")
}
