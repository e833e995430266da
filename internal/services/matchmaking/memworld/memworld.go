// Package memworld provides an in-memory world directory implementing the
// matchmaking domain's collaborator interfaces. It backs the standalone
// server wiring and the engine tests; a production deployment replaces it
// with the world simulation process.
package memworld

import (
	"fmt"
	"sync"

	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
)

// Directory resolves players and parties and performs membership changes.
type Directory struct {
	mu        sync.RWMutex
	players   map[domain.PlayerID]*Player
	parties   map[domain.PartyID]*Party
	nextParty int
}

// NewDirectory builds an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		players: make(map[domain.PlayerID]*Player),
		parties: make(map[domain.PartyID]*Party),
	}
}

// AddPlayer registers the player in the directory.
func (d *Directory) AddPlayer(p *Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[p.id] = p
}

// RemovePlayer drops the player, simulating a disconnect-and-expire.
func (d *Directory) RemovePlayer(id domain.PlayerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.players, id)
}

// Player resolves a player identifier.
func (d *Directory) Player(id domain.PlayerID) (domain.Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.players[id]
	if !ok {
		return nil, false
	}
	return p, true
}

// Party resolves a party identifier.
func (d *Directory) Party(id domain.PartyID) (domain.Party, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	g, ok := d.parties[id]
	if !ok {
		return nil, false
	}
	return g, true
}

// CreateParty forms a new single-member party led by the given player.
func (d *Directory) CreateParty(leader domain.PlayerID) (domain.Party, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.players[leader]
	if !ok {
		return nil, fmt.Errorf("create party: player %s does not resolve", leader)
	}
	if p.partyID != "" {
		return nil, fmt.Errorf("create party: player %s is already in party %s", leader, p.partyID)
	}

	d.nextParty++
	g := &Party{
		id:        domain.PartyID(fmt.Sprintf("party-%d", d.nextParty)),
		leader:    leader,
		members:   []domain.PlayerID{leader},
		kicksLeft: defaultKicksLeft,
	}
	d.parties[g.id] = g
	p.partyID = g.id
	return g, nil
}

const defaultKicksLeft = 3

// AddMember adds the player to the party.
func (d *Directory) AddMember(partyID domain.PartyID, playerID domain.PlayerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.parties[partyID]
	if !ok {
		return fmt.Errorf("add member: party %s does not resolve", partyID)
	}
	p, ok := d.players[playerID]
	if !ok {
		return fmt.Errorf("add member: player %s does not resolve", playerID)
	}
	for _, memberID := range g.members {
		if memberID == playerID {
			return nil
		}
	}
	g.members = append(g.members, playerID)
	p.partyID = partyID
	return nil
}

// RemoveMember removes the player from the party, promoting the next member
// to leader when the leader leaves and dissolving an emptied party.
func (d *Directory) RemoveMember(partyID domain.PartyID, playerID domain.PlayerID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	g, ok := d.parties[partyID]
	if !ok {
		return fmt.Errorf("remove member: party %s does not resolve", partyID)
	}
	for i, memberID := range g.members {
		if memberID != playerID {
			continue
		}
		g.members = append(g.members[:i:i], g.members[i+1:]...)
		if p, ok := d.players[playerID]; ok {
			p.partyID = ""
		}
		if len(g.members) == 0 {
			delete(d.parties, partyID)
		} else if g.leader == playerID {
			g.leader = g.members[0]
		}
		return nil
	}
	return fmt.Errorf("remove member: player %s is not in party %s", playerID, partyID)
}

var _ domain.World = (*Directory)(nil)
