package domain

// Eligibility evaluates whether a player or party may enter content. All
// checks are pure reads against live entities and the catalog.
type Eligibility struct {
	Catalog *Catalog

	// MaxPartySize bounds non-raid parties at admission.
	MaxPartySize int
}

// PlayerJoinResult evaluates queue admission for one solo player.
func (e Eligibility) PlayerJoinResult(player Player) JoinResult {
	if player.InRestrictedActivity() {
		return JoinErrRestrictedActivity
	}
	if player.HasPenalty(PenaltyDeserter) {
		return JoinErrDeserter
	}
	if player.HasPenalty(PenaltyCooldown) {
		return JoinErrCooldown
	}
	// Must be the last check: an empty selection is ignored for party
	// members, whose leader carries the party's selection.
	if len(player.RequestedContent()) == 0 {
		return JoinErrEmptySelection
	}
	return JoinOK
}

// PartyJoinResult evaluates queue admission for a whole party. A member
// whose only failure is an empty selection does not block the party; any
// other member failure does.
func (e Eligibility) PartyJoinResult(party Party, category Category, world World) JoinResult {
	if !party.IsRaid() && party.Size() > e.MaxPartySize {
		return JoinErrPartyTooLarge
	}
	if party.IsRaid() && category != CategoryRaid {
		return JoinErrMismatchedCategory
	}
	for _, memberID := range party.MemberIDs() {
		member, ok := world.Player(memberID)
		if !ok || !member.Connected() {
			return JoinErrMemberUnreachable
		}
		result := e.PlayerJoinResult(member)
		if result == JoinErrEmptySelection {
			continue
		}
		if result != JoinOK {
			return result
		}
	}
	return JoinOK
}

// LockStatus walks the content gates in order: expansion, existing
// completion lock for elevated difficulty, level bounds, zone access, gear
// bounds for elevated difficulty, prior completion. The first failing check
// wins.
func (e Eligibility) LockStatus(player Player, content *Content) LockStatus {
	if player == nil || !player.Connected() {
		return LockRaidLocked
	}
	if content.Expansion > player.Expansion() {
		return LockInsufficientExpansion
	}
	if content.Difficulty.Elevated() && player.LockedOut(content.MapID, content.Difficulty) {
		return LockRaidLocked
	}
	if content.MinLevel > player.Level() {
		return LockTooLowLevel
	}
	if content.MaxLevel > 0 && content.MaxLevel < player.Level() {
		return LockTooHighLevel
	}
	if status := player.AccessStatus(content.MapID, content.Difficulty); status != LockOK {
		return status
	}
	if content.Difficulty.Elevated() {
		gear := player.GearScore()
		if content.MinGearScore > 0 && gear < content.MinGearScore {
			return LockTooLowGearScore
		}
		if content.MaxGearScore > 0 && gear > content.MaxGearScore {
			return LockTooHighGearScore
		}
	}
	if player.HasCompleted(content.ID) {
		return LockRaidLocked
	}
	return LockOK
}

// PartyLockStatus evaluates LockStatus for every party member; the first
// non-OK member status wins.
func (e Eligibility) PartyLockStatus(party Party, content *Content, world World) LockStatus {
	if party == nil {
		return LockRaidLocked
	}
	for _, memberID := range party.MemberIDs() {
		member, _ := world.Player(memberID)
		if status := e.LockStatus(member, content); status != LockOK {
			return status
		}
	}
	return LockOK
}

// RandomContentFor lists the random-content placeholders the player
// currently qualifies for.
func (e Eligibility) RandomContentFor(player Player) ContentSet {
	set := make(ContentSet)
	for _, entry := range e.Catalog.All() {
		if !entry.Random() {
			continue
		}
		if e.LockStatus(player, entry) == LockOK {
			set.Add(entry.ID)
		}
	}
	return set
}

// ExpandRandomForMembers resolves a random placeholder to the concrete
// rows every listed member qualifies for.
func (e Eligibility) ExpandRandomForMembers(random *Content, members []PlayerID, world World) []*Content {
	var out []*Content
	for _, entry := range e.Catalog.ConcreteFor(random) {
		eligible := true
		for _, memberID := range members {
			member, _ := world.Player(memberID)
			if e.LockStatus(member, entry) != LockOK {
				eligible = false
				break
			}
		}
		if eligible {
			out = append(out, entry)
		}
	}
	return out
}
