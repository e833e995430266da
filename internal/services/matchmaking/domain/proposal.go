package domain

import (
	"sort"
	"time"
)

// ProposalID identifies one in-flight proposal. IDs are monotonic and
// process-unique; zero means "no proposal".
type ProposalID uint32

// ProposalState tracks the proposal lifecycle.
type ProposalState uint8

// Proposal states. Success, Failed and Expired are terminal: the proposal
// is evicted from the table when it reaches one.
const (
	ProposalInitiating ProposalState = iota
	ProposalPending
	ProposalSuccess
	ProposalFailed
	ProposalExpired
)

// Proposal is an offer of a specific content instance to a specific set of
// players, pending unanimous acceptance.
type Proposal struct {
	ID        ProposalID
	ContentID ContentID

	// Party is the destination group, or "" until a solo-formed proposal
	// commits.
	Party PartyID

	State     ProposalState
	CreatedAt time.Time

	answers  map[PlayerID]Answer
	declined map[PlayerID]struct{}
}

func newProposal(id ProposalID, contentID ContentID, party PartyID, now time.Time) *Proposal {
	return &Proposal{
		ID:        id,
		ContentID: contentID,
		Party:     party,
		State:     ProposalInitiating,
		CreatedAt: now,
		answers:   make(map[PlayerID]Answer),
		declined:  make(map[PlayerID]struct{}),
	}
}

// AddMember records a new invitee with a pending answer.
func (p *Proposal) AddMember(id PlayerID) {
	p.answers[id] = AnswerPending
}

// HasMember reports whether id is part of the proposal.
func (p *Proposal) HasMember(id PlayerID) bool {
	_, ok := p.answers[id]
	return ok
}

// SetAnswer records a member's answer. Unknown members are ignored.
func (p *Proposal) SetAnswer(id PlayerID, answer Answer) {
	if _, ok := p.answers[id]; ok {
		p.answers[id] = answer
	}
}

// Answer returns the member's recorded answer.
func (p *Proposal) Answer(id PlayerID) Answer {
	answer, ok := p.answers[id]
	if !ok {
		return AnswerPending
	}
	return answer
}

// RemoveDecliner drops a declining member from the acceptance set and
// remembers the decline so a later assembly pass does not re-invite them.
func (p *Proposal) RemoveDecliner(id PlayerID) {
	delete(p.answers, id)
	p.declined[id] = struct{}{}
}

// Declined reports whether id previously declined this proposal.
func (p *Proposal) Declined(id PlayerID) bool {
	_, ok := p.declined[id]
	return ok
}

// Members returns the current acceptance set in lexical order.
func (p *Proposal) Members() []PlayerID {
	ids := make([]PlayerID, 0, len(p.answers))
	for id := range p.answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MemberCount returns the acceptance set size.
func (p *Proposal) MemberCount() int {
	return len(p.answers)
}

// AllAccepted reports whether every member answered agree. An empty set is
// not an acceptance.
func (p *Proposal) AllAccepted() bool {
	if len(p.answers) == 0 {
		return false
	}
	for _, answer := range p.answers {
		if answer != AnswerAgree {
			return false
		}
	}
	return true
}

// Active reports whether the proposal is still inside its staleness window.
func (p *Proposal) Active(now time.Time, ttl time.Duration) bool {
	if p.State >= ProposalSuccess {
		return false
	}
	return now.Sub(p.CreatedAt) < ttl
}
