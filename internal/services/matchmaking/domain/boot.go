package domain

import "time"

// BootVote is the in-instance protocol to remove a party member. One vote
// may be active per party at a time.
type BootVote struct {
	Party    PartyID
	Target   PlayerID
	Reason   string
	Required int
	Deadline time.Time

	votes map[PlayerID]Answer
}

func newBootVote(party PartyID, target PlayerID, reason string, required int, deadline time.Time) *BootVote {
	return &BootVote{
		Party:    party,
		Target:   target,
		Reason:   reason,
		Required: required,
		Deadline: deadline,
		votes:    make(map[PlayerID]Answer),
	}
}

func (b *BootVote) seedVote(id PlayerID, answer Answer) {
	b.votes[id] = answer
}

// CastVote records a member's vote. Double votes are rejected; votes from
// players outside the vote set are ignored silently.
func (b *BootVote) CastVote(id PlayerID, agree bool) error {
	current, ok := b.votes[id]
	if !ok {
		return ErrTargetNotMember
	}
	if current != AnswerPending {
		return ErrAlreadyVoted
	}
	if agree {
		b.votes[id] = AnswerAgree
	} else {
		b.votes[id] = AnswerDeny
	}
	return nil
}

// Counts returns how many members have voted and how many agreed.
func (b *BootVote) Counts() (voted, agree int) {
	for _, answer := range b.votes {
		if answer != AnswerPending {
			voted++
			if answer == AnswerAgree {
				agree++
			}
		}
	}
	return voted, agree
}

// Outcome evaluates the vote. It resolves as soon as the agree count
// reaches the threshold, every member has voted, or the remaining pending
// members can no longer mathematically reach the threshold.
func (b *BootVote) Outcome() (resolved, passed bool) {
	voted, agree := b.Counts()
	total := len(b.votes)
	switch {
	case agree >= b.Required:
		return true, true
	case voted >= total:
		return true, false
	case total-voted+agree < b.Required:
		return true, false
	default:
		return false, false
	}
}

// Expired reports whether the vote deadline has passed.
func (b *BootVote) Expired(now time.Time) bool {
	return now.After(b.Deadline)
}

// Voters returns the ids in the vote set.
func (b *BootVote) Voters() []PlayerID {
	ids := make([]PlayerID, 0, len(b.votes))
	for id := range b.votes {
		ids = append(ids, id)
	}
	return ids
}

// Status snapshots the vote for outbound notifications.
func (b *BootVote) Status(inProgress bool) BootStatus {
	voted, agree := b.Counts()
	return BootStatus{
		Target:     b.Target,
		Reason:     b.Reason,
		InProgress: inProgress,
		AgreeCount: agree,
		VotedCount: voted,
		Required:   b.Required,
	}
}
