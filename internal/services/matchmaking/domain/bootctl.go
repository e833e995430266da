package domain

import "log"

// InitBoot starts a vote to remove target from the initiator's party. The
// target is seeded with an automatic deny and the initiator with an
// automatic agree; every other member starts pending.
func (e *Engine) InitBoot(initiatorID, targetID PlayerID, reason string) error {
	initiator, ok := e.world.Player(initiatorID)
	if !ok {
		return ErrNoParty
	}
	partyID := initiator.PartyID()
	if partyID == "" {
		return ErrNoParty
	}
	party, ok := e.world.Party(partyID)
	if !ok {
		return ErrNoParty
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, active := e.boots[partyID]; active {
		return ErrVoteInProgress
	}
	if party.KicksLeft() <= 0 {
		return ErrNoKicksLeft
	}
	if _, ok := e.world.Player(targetID); !ok {
		return ErrTargetUnresolved
	}
	isMember := false
	for _, memberID := range party.MemberIDs() {
		if memberID == targetID {
			isMember = true
			break
		}
	}
	if !isMember {
		return ErrTargetNotMember
	}

	// The agree threshold is a simple majority of the party, with the
	// configured count as a floor.
	required := e.cfg.BootVotesNeeded
	if majority := party.Size()/2 + 1; majority > required {
		required = majority
	}
	vote := newBootVote(partyID, targetID, reason, required, e.clock().Add(e.cfg.BootTTL))
	for _, memberID := range party.MemberIDs() {
		switch memberID {
		case targetID:
			vote.seedVote(memberID, AnswerDeny)
		case initiatorID:
			vote.seedVote(memberID, AnswerAgree)
		default:
			vote.seedVote(memberID, AnswerPending)
		}
	}
	e.boots[partyID] = vote

	status := vote.Status(true)
	for _, memberID := range vote.Voters() {
		if member, ok := e.world.Player(memberID); ok {
			e.setPlayerState(member, StateBoot)
		}
		e.ntf.BootUpdate(memberID, status)
	}

	// Seeded votes alone can resolve a two or three member party.
	if resolved, passed := vote.Outcome(); resolved {
		e.finishBoot(vote, passed)
	}
	return nil
}

// CastBootVote records the voter's answer in its party's active boot vote
// and resolves the vote when the outcome is decided.
func (e *Engine) CastBootVote(voterID PlayerID, agree bool) error {
	voter, ok := e.world.Player(voterID)
	if !ok {
		return ErrNoParty
	}
	partyID := voter.PartyID()
	if partyID == "" {
		return ErrNoParty
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	vote, ok := e.boots[partyID]
	if !ok {
		return ErrNoActiveVote
	}
	if err := vote.CastVote(voterID, agree); err != nil {
		return err
	}

	if _, ok := e.world.Player(vote.Target); !ok {
		// Target already gone; nothing left to remove.
		e.finishBoot(vote, false)
		return nil
	}

	status := vote.Status(true)
	for _, memberID := range vote.Voters() {
		e.ntf.BootUpdate(memberID, status)
	}
	if resolved, passed := vote.Outcome(); resolved {
		e.finishBoot(vote, passed)
	}
	return nil
}

// finishBoot resolves the vote: on a pass the target is removed from the
// party, teleported out, stripped of matchmaking state, and the leader is
// offered a replacement search. Callers must hold e.mu.
func (e *Engine) finishBoot(vote *BootVote, passed bool) {
	delete(e.boots, vote.Party)

	status := vote.Status(false)
	for _, memberID := range vote.Voters() {
		e.ntf.BootUpdate(memberID, status)
		if memberID == vote.Target {
			continue
		}
		if member, ok := e.world.Player(memberID); ok {
			e.setPlayerState(member, StateInDungeon)
		}
	}

	party, ok := e.world.Party(vote.Party)
	if !ok {
		return
	}
	if !passed {
		if target, ok := e.world.Player(vote.Target); ok {
			e.setPlayerState(target, StateInDungeon)
		}
		return
	}

	party.DecrementKicksLeft()
	if err := e.world.RemoveMember(vote.Party, vote.Target); err != nil {
		log.Printf("matchmaking: boot remove %s from party %s: %v", vote.Target, vote.Party, err)
	}
	if target, ok := e.world.Player(vote.Target); ok {
		e.ExitInstance(vote.Target)
		e.setPlayerState(target, StateNone)
		target.SetRequestedContent(nil)
	}
	e.ntf.OfferContinue(party.LeaderID(), party.ContentID())
}

// sweepBoots fails votes whose deadline passed without resolution.
func (e *Engine) sweepBoots() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.clock()
	for _, vote := range e.boots {
		if vote.Expired(now) {
			e.finishBoot(vote, false)
		}
	}
}
