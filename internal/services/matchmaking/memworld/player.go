package memworld

import (
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
)

// Player is an in-memory player entity. Construct with NewPlayer, then
// shape it with the With and Set methods. The matchmaking engine serializes
// access; Player itself is not safe for concurrent mutation.
type Player struct {
	id         domain.PlayerID
	connected  bool
	alive      bool
	level      int
	gearScore  int
	expansion  int
	restricted bool

	penalties map[domain.Penalty]struct{}
	requested domain.ContentSet
	roles     domain.RoleMask
	state     domain.PlayerState
	partyID   domain.PartyID

	ignores   map[domain.PlayerID]struct{}
	completed map[domain.ContentID]struct{}
	lockouts  map[string]struct{}
	access    map[string]domain.LockStatus

	mapID      string
	position   domain.Position
	teleported bool
}

// NewPlayer builds a connected, alive player at the given level and gear
// score.
func NewPlayer(id domain.PlayerID, level, gearScore int) *Player {
	return &Player{
		id:        id,
		connected: true,
		alive:     true,
		level:     level,
		gearScore: gearScore,
		penalties: make(map[domain.Penalty]struct{}),
		requested: make(domain.ContentSet),
		ignores:   make(map[domain.PlayerID]struct{}),
		completed: make(map[domain.ContentID]struct{}),
		lockouts:  make(map[string]struct{}),
		access:    make(map[string]domain.LockStatus),
	}
}

// WithRoles sets the player's declared roles and returns the player.
func (p *Player) WithRoles(roles domain.RoleMask) *Player {
	p.roles = roles
	return p
}

// WithRequested sets the player's requested content and returns the player.
func (p *Player) WithRequested(ids ...domain.ContentID) *Player {
	p.requested = domain.NewContentSet(ids...)
	return p
}

// WithExpansion sets the player's expansion level and returns the player.
func (p *Player) WithExpansion(expansion int) *Player {
	p.expansion = expansion
	return p
}

func (p *Player) ID() domain.PlayerID { return p.id }
func (p *Player) Connected() bool     { return p.connected }
func (p *Player) Alive() bool         { return p.alive }
func (p *Player) Level() int          { return p.level }
func (p *Player) GearScore() int      { return p.gearScore }
func (p *Player) Expansion() int      { return p.expansion }

func (p *Player) InRestrictedActivity() bool { return p.restricted }

func (p *Player) HasPenalty(penalty domain.Penalty) bool {
	_, ok := p.penalties[penalty]
	return ok
}
func (p *Player) ApplyPenalty(penalty domain.Penalty) { p.penalties[penalty] = struct{}{} }
func (p *Player) ClearPenalty(penalty domain.Penalty) { delete(p.penalties, penalty) }

func (p *Player) RequestedContent() domain.ContentSet { return p.requested }
func (p *Player) SetRequestedContent(set domain.ContentSet) {
	if set == nil {
		set = make(domain.ContentSet)
	}
	p.requested = set
}

func (p *Player) Roles() domain.RoleMask         { return p.roles }
func (p *Player) SetRoles(roles domain.RoleMask) { p.roles = roles }

func (p *Player) State() domain.PlayerState         { return p.state }
func (p *Player) SetState(state domain.PlayerState) { p.state = state }

func (p *Player) PartyID() domain.PartyID { return p.partyID }

func (p *Player) Ignores(other domain.PlayerID) bool {
	_, ok := p.ignores[other]
	return ok
}

func (p *Player) HasCompleted(id domain.ContentID) bool {
	_, ok := p.completed[id]
	return ok
}

func (p *Player) LockedOut(mapID string, difficulty domain.Difficulty) bool {
	_, ok := p.lockouts[lockKey(mapID, difficulty)]
	return ok
}

func (p *Player) AccessStatus(mapID string, difficulty domain.Difficulty) domain.LockStatus {
	if status, ok := p.access[lockKey(mapID, difficulty)]; ok {
		return status
	}
	return domain.LockOK
}

func (p *Player) MapID() string             { return p.mapID }
func (p *Player) Position() domain.Position { return p.position }

func (p *Player) Teleported() bool        { return p.teleported }
func (p *Player) SetTeleported(tele bool) { p.teleported = tele }

// Mutators for test and scenario setup.

func (p *Player) SetConnected(connected bool)       { p.connected = connected }
func (p *Player) SetAlive(alive bool)               { p.alive = alive }
func (p *Player) SetLevel(level int)                { p.level = level }
func (p *Player) SetGearScore(score int)            { p.gearScore = score }
func (p *Player) SetRestricted(restricted bool)     { p.restricted = restricted }
func (p *Player) SetIgnored(other domain.PlayerID)  { p.ignores[other] = struct{}{} }
func (p *Player) MarkCompleted(id domain.ContentID) { p.completed[id] = struct{}{} }

func (p *Player) SetLockout(mapID string, difficulty domain.Difficulty) {
	p.lockouts[lockKey(mapID, difficulty)] = struct{}{}
}

func (p *Player) DenyAccess(mapID string, difficulty domain.Difficulty, status domain.LockStatus) {
	p.access[lockKey(mapID, difficulty)] = status
}

func (p *Player) SetLocation(mapID string, pos domain.Position) {
	p.mapID = mapID
	p.position = pos
}

func lockKey(mapID string, difficulty domain.Difficulty) string {
	return fmt.Sprintf("%d:%s", difficulty, mapID)
}

var _ domain.Player = (*Player)(nil)
