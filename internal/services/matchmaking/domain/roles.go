package domain

import "sort"

// RoleRequirements holds the composition minimums for a full group.
type RoleRequirements struct {
	Tanks     int
	Healers   int
	Damage    int
	GroupSize int
}

// DefaultRoleRequirements is the standard five-player dungeon composition.
func DefaultRoleRequirements() RoleRequirements {
	return RoleRequirements{Tanks: 1, Healers: 1, Damage: 3, GroupSize: 5}
}

// RoleAssignment maps each member to its declared role mask. Validation
// passes never mutate an assignment in place; narrowing produces a new one.
type RoleAssignment map[PlayerID]RoleMask

// Clone returns an independent copy of the assignment.
func (a RoleAssignment) Clone() RoleAssignment {
	out := make(RoleAssignment, len(a))
	for id, mask := range a {
		out[id] = mask
	}
	return out
}

// members returns the assignment's player ids in lexical order, so greedy
// passes consume candidates deterministically.
func (a RoleAssignment) members() []PlayerID {
	ids := make([]PlayerID, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CheckRoles reports whether the assignment can satisfy the composition
// minimums. It greedily consumes one member per required slot in
// tank-healer-damage order, then succeeds only if the still-unfilled
// required slots do not exceed the remaining unassigned headcount. In debug
// mode every assignment passes.
func CheckRoles(assignment RoleAssignment, req RoleRequirements, debug bool) bool {
	if len(assignment) == 0 {
		return false
	}
	if debug {
		return true
	}
	if len(assignment) > req.GroupSize {
		return false
	}

	tanks := req.Tanks
	healers := req.Healers
	damage := req.Damage
	for _, id := range assignment.members() {
		mask := assignment[id]
		switch {
		case mask.Has(RoleTank) && tanks > 0:
			tanks--
		case mask.Has(RoleHealer) && healers > 0:
			healers--
		case mask.Has(RoleDamage) && damage > 0:
			damage--
		}
	}

	return tanks+healers+damage <= req.GroupSize-len(assignment)
}

// NarrowRoles strips extraneous role bits from multi-role members so each
// ends up with a single final role. Bits are removed one category at a time
// in tank, healer, damage order, re-validating after each strip and
// reverting the strip if validation fails. The order is significant:
// changing it changes which member lands on which role.
func NarrowRoles(assignment RoleAssignment, req RoleRequirements, debug bool) RoleAssignment {
	narrowed := assignment.Clone()

	for _, id := range narrowed.members() {
		if narrowed[id].Has(RoleTank) {
			old := narrowed[id]
			narrowed[id] = old.Without(RoleHealer | RoleDamage)
			if !CheckRoles(narrowed, req, debug) {
				narrowed[id] = old
			}
		}
		if narrowed[id].Has(RoleHealer) {
			old := narrowed[id]
			narrowed[id] = old.Without(RoleTank | RoleDamage)
			if !CheckRoles(narrowed, req, debug) {
				narrowed[id] = old
			}
		}
		if narrowed[id].Has(RoleDamage) {
			old := narrowed[id]
			narrowed[id] = old.Without(RoleTank | RoleHealer)
			if !CheckRoles(narrowed, req, debug) {
				narrowed[id] = old
			}
		}
	}

	return narrowed
}

// ElectLeader picks the leader for a newly formed group: the member with
// the leader-preference flag and the highest gear score, or, when no member
// carries the flag, the single highest gear score overall. Election never
// returns ok=false for a non-empty set of resolvable members.
func ElectLeader(members []PlayerID, world World) (PlayerID, bool) {
	var leader PlayerID
	found := false
	bestScore := -1

	var flagged []Player
	for _, id := range members {
		member, ok := world.Player(id)
		if !ok || !member.Connected() {
			continue
		}
		if member.Roles().Has(RoleLeader) {
			flagged = append(flagged, member)
		}
		if member.GearScore() > bestScore {
			bestScore = member.GearScore()
			leader = member.ID()
			found = true
		}
	}

	bestScore = -1
	for _, member := range flagged {
		if member.GearScore() > bestScore {
			bestScore = member.GearScore()
			leader = member.ID()
			found = true
		}
	}

	return leader, found
}
