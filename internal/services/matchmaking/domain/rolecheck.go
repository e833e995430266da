package domain

// SetRoles records a player's role declaration. While the player's party is
// queued the declaration is validated against the composition minimums:
// declaring no combat role, or a combination the party can no longer
// satisfy, is a terminal failure that removes the whole party from the
// queue. Returns whether the party (if any) is still queued afterwards.
func (e *Engine) SetRoles(playerID PlayerID, roles RoleMask) bool {
	player, ok := e.world.Player(playerID)
	if !ok {
		return false
	}
	player.SetRoles(roles)

	partyID := player.PartyID()
	if partyID == "" {
		return true
	}
	party, ok := e.world.Party(partyID)
	if !ok {
		return true
	}
	if _, queued := e.queue.Entry(PartyRef(partyID)); !queued {
		return true
	}

	if roles.Without(RoleLeader) == RoleNone {
		e.failRoleCheck(party, RoleCheckMissingRole)
		return false
	}

	assignment := make(RoleAssignment, party.Size())
	for _, memberID := range party.MemberIDs() {
		member, ok := e.world.Player(memberID)
		if !ok {
			continue
		}
		if member.Roles().Without(RoleLeader) == RoleNone {
			// Not everyone has declared yet; keep waiting.
			e.notifyRoleCheck(party, RoleCheckInitiating)
			return true
		}
		assignment[memberID] = member.Roles()
	}

	if !CheckRoles(assignment, e.cfg.Roles, e.cfg.Debug) {
		e.failRoleCheck(party, RoleCheckWrongRoles)
		return false
	}

	e.notifyRoleCheck(party, RoleCheckFinished)
	return true
}

// failRoleCheck terminally fails a queued party's role check: the party
// leaves the queue and must re-join with a workable composition.
func (e *Engine) failRoleCheck(party Party, state RoleCheckState) {
	category := CategoryNone
	if entry, queued := e.queue.Entry(PartyRef(party.ID())); queued {
		category = entry.Category
	}
	e.queue.Remove(PartyRef(party.ID()))

	e.notifyRoleCheck(party, state)
	for _, memberID := range party.MemberIDs() {
		if member, ok := e.world.Player(memberID); ok {
			e.setPlayerState(member, StateNone)
		}
	}
	e.ntf.JoinResult(party.LeaderID(), JoinErrRoleCheckFailed)
	e.ntf.QueueRemoved(party.LeaderID(), category)
}

func (e *Engine) notifyRoleCheck(party Party, state RoleCheckState) {
	for _, memberID := range party.MemberIDs() {
		e.ntf.RoleCheckUpdate(memberID, state)
	}
}
