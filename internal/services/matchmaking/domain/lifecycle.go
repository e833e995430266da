package domain

import "log"

// enterGroupFinder finalizes a member's move from the queue into a formed
// group: its queue and search entries are consumed and the random-content
// cooldown penalty is applied. Callers must hold e.mu.
func (e *Engine) enterGroupFinder(memberID PlayerID, party Party) {
	e.queue.Remove(PlayerRef(memberID))
	e.queue.Remove(PartyRef(party.ID()))

	member, ok := e.world.Player(memberID)
	if !ok {
		e.search.RemoveEverywhere(memberID)
		return
	}
	e.search.Remove(memberID, member.RequestedContent())
	member.ApplyPenalty(PenaltyCooldown)
	e.setPlayerState(member, StateInDungeon)
}

// PlayerLeftGroup handles a member abandoning a group-finder party before
// completion: the cooldown penalty upgrades to deserter and the member is
// returned to its anchor. Members of a finished run leave without penalty.
func (e *Engine) PlayerLeftGroup(playerID PlayerID) {
	player, ok := e.world.Player(playerID)
	if !ok {
		e.queue.Remove(PlayerRef(playerID))
		e.search.RemoveEverywhere(playerID)
		return
	}

	if player.State() != StateFinished && player.HasPenalty(PenaltyCooldown) {
		player.ClearPenalty(PenaltyCooldown)
		player.ApplyPenalty(PenaltyDeserter)
	}
	e.ExitInstance(playerID)
	e.setPlayerState(player, StateNone)
	player.SetRequestedContent(nil)
}

// FinishContent marks the party's bound content complete: every member
// moves to the finished state and, when the run was entered through a
// random-content queue, receives the reward row it qualifies for.
func (e *Engine) FinishContent(partyID PartyID) {
	party, ok := e.world.Party(partyID)
	if !ok {
		return
	}
	if !party.GroupFinder() {
		return
	}

	for _, memberID := range party.MemberIDs() {
		member, ok := e.world.Player(memberID)
		if !ok || !member.Connected() {
			continue
		}
		if member.State() == StateFinished {
			continue
		}
		e.setPlayerState(member, StateFinished)
		e.grantReward(member)
	}
}

// grantReward pays out the member's random-content reward, if any. The
// reward is keyed by the random placeholder the member queued under, not by
// the concrete instance it resolved to.
func (e *Engine) grantReward(member Player) {
	var randomID ContentID
	for _, contentID := range member.RequestedContent().Sorted() {
		if content, ok := e.catalog.Lookup(contentID); ok && content.Random() {
			randomID = contentID
			break
		}
	}
	if randomID == "" {
		return
	}

	row, ok := e.rewards.RewardFor(randomID, member.Level())
	if !ok {
		log.Printf("matchmaking: no reward row for content %s", randomID)
		return
	}
	firstTime := !member.HasCompleted(randomID)
	reward := row.Repeat
	if firstTime {
		reward = row.FirstTime
	}
	e.ntf.RewardGranted(member.ID(), randomID, reward, firstTime)
}
