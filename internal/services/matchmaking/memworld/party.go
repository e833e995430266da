package memworld

import "github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"

// Party is an in-memory party entity.
type Party struct {
	id      domain.PartyID
	members []domain.PlayerID
	leader  domain.PlayerID
	raid    bool

	groupFinder bool
	category    domain.Category
	requested   domain.ContentSet
	difficulty  domain.Difficulty
	content     domain.ContentID
	proposal    domain.ProposalID
	kicksLeft   int
}

// NewParty builds a pre-formed party for scenario setup and registers its
// members in the directory.
func (d *Directory) NewParty(id domain.PartyID, leader domain.PlayerID, members ...*Player) *Party {
	d.mu.Lock()
	defer d.mu.Unlock()

	g := &Party{id: id, leader: leader, kicksLeft: defaultKicksLeft}
	for _, member := range members {
		d.players[member.id] = member
		member.partyID = id
		g.members = append(g.members, member.id)
	}
	d.parties[id] = g
	return g
}

// WithRequested sets the party's requested content and returns the party.
func (g *Party) WithRequested(ids ...domain.ContentID) *Party {
	g.requested = domain.NewContentSet(ids...)
	return g
}

// WithRaid marks the party as a raid and returns the party.
func (g *Party) WithRaid() *Party {
	g.raid = true
	return g
}

func (g *Party) ID() domain.PartyID        { return g.id }
func (g *Party) Size() int                 { return len(g.members) }
func (g *Party) LeaderID() domain.PlayerID { return g.leader }
func (g *Party) IsRaid() bool              { return g.raid }

func (g *Party) MemberIDs() []domain.PlayerID {
	out := make([]domain.PlayerID, len(g.members))
	copy(out, g.members)
	return out
}

func (g *Party) GroupFinder() bool { return g.groupFinder }
func (g *Party) ConvertToGroupFinder(category domain.Category) {
	g.groupFinder = true
	g.category = category
}

func (g *Party) RequestedContent() domain.ContentSet {
	if g.requested == nil {
		return make(domain.ContentSet)
	}
	return g.requested
}

func (g *Party) Difficulty() domain.Difficulty     { return g.difficulty }
func (g *Party) SetDifficulty(d domain.Difficulty) { g.difficulty = d }
func (g *Party) ContentID() domain.ContentID       { return g.content }
func (g *Party) SetContent(id domain.ContentID)    { g.content = id }
func (g *Party) ProposalID() domain.ProposalID     { return g.proposal }
func (g *Party) SetProposal(id domain.ProposalID)  { g.proposal = id }

func (g *Party) KicksLeft() int { return g.kicksLeft }
func (g *Party) DecrementKicksLeft() {
	if g.kicksLeft > 0 {
		g.kicksLeft--
	}
}

var _ domain.Party = (*Party)(nil)
