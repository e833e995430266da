package domain

// EnterInstance moves every not-yet-teleported member of the party to its
// bound content instance. Members already inside the instance anchor the
// others: latecomers land on the leader's position when the leader is in.
func (e *Engine) EnterInstance(partyID PartyID) {
	party, ok := e.world.Party(partyID)
	if !ok {
		return
	}
	content, ok := e.catalog.Lookup(party.ContentID())
	if !ok || content.Random() {
		for _, memberID := range party.MemberIDs() {
			e.ntf.TeleportFailed(memberID, TeleportErrNoDestination)
		}
		return
	}

	leaderID := party.LeaderID()
	leader, leaderOK := e.world.Player(leaderID)
	leaderInside := leaderOK && leader.MapID() == content.MapID

	for _, memberID := range party.MemberIDs() {
		member, ok := e.world.Player(memberID)
		if !ok || member.Teleported() {
			continue
		}
		if terr := e.teleportCheck(member, party, content); terr != TeleportOK {
			e.ntf.TeleportFailed(memberID, terr)
			continue
		}

		dest := Destination{MapID: content.MapID, Position: content.Entrance}
		if leaderInside && memberID != leaderID {
			dest.Position = leader.Position()
		}
		e.port.Teleport(memberID, dest)
		member.SetTeleported(true)
		e.setPlayerState(member, StateInDungeon)
	}
}

// RequestTeleport handles a member's explicit teleport request: out of the
// instance, or back in after a death or disconnect.
func (e *Engine) RequestTeleport(playerID PlayerID, out bool) {
	player, ok := e.world.Player(playerID)
	if !ok {
		return
	}
	if out {
		e.ExitInstance(playerID)
		return
	}

	partyID := player.PartyID()
	if partyID == "" {
		e.ntf.TeleportFailed(playerID, TeleportErrNoParty)
		return
	}
	party, ok := e.world.Party(partyID)
	if !ok {
		e.ntf.TeleportFailed(playerID, TeleportErrNoParty)
		return
	}
	content, ok := e.catalog.Lookup(party.ContentID())
	if !ok || content.Random() {
		e.ntf.TeleportFailed(playerID, TeleportErrNoDestination)
		return
	}
	if terr := e.teleportCheck(player, party, content); terr != TeleportOK {
		e.ntf.TeleportFailed(playerID, terr)
		return
	}

	e.port.Teleport(playerID, Destination{MapID: content.MapID, Position: content.Entrance})
	player.SetTeleported(true)
	e.setPlayerState(player, StateInDungeon)
}

// teleportCheck re-evaluates entry gates at commit time: eligibility may
// have regressed since the candidate queued.
func (e *Engine) teleportCheck(member Player, party Party, content *Content) TeleportError {
	if !member.Alive() {
		return TeleportErrPlayerDead
	}
	if party.Difficulty() != content.Difficulty {
		return TeleportErrDifficultyMismatch
	}
	if e.elig.LockStatus(member, content) != LockOK {
		return TeleportErrLocked
	}
	return TeleportOK
}

// ExitInstance returns a teleported player to its pre-instance anchor.
// Exiting a player that never teleported is a no-op.
func (e *Engine) ExitInstance(playerID PlayerID) {
	player, ok := e.world.Player(playerID)
	if !ok || !player.Teleported() {
		return
	}
	e.port.ReturnToAnchor(playerID)
	player.SetTeleported(false)
}
