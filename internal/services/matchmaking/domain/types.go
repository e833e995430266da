package domain

import "sort"

// PlayerID identifies a player entity in the world simulation.
type PlayerID string

// PartyID identifies a party (group) entity in the world simulation.
type PartyID string

// ContentID identifies one queueable activity: a dungeon, raid instance, or
// quest zone.
type ContentID string

// Category classifies queueable content. Each category has its own waiting
// lists and its own assembly strategy.
type Category uint8

// Content categories.
const (
	CategoryNone Category = iota
	CategoryDungeon
	CategoryQuest
	CategoryZone
	CategoryHeroicDungeon
	CategoryRandomDungeon
	CategoryRaid

	categoryCount
)

// String returns the category name for logs.
func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryDungeon:
		return "dungeon"
	case CategoryQuest:
		return "quest"
	case CategoryZone:
		return "zone"
	case CategoryHeroicDungeon:
		return "heroic"
	case CategoryRandomDungeon:
		return "random"
	case CategoryRaid:
		return "raid"
	default:
		return "unknown"
	}
}

// Categories lists every real content category in processing order.
func Categories() []Category {
	return []Category{
		CategoryDungeon,
		CategoryQuest,
		CategoryZone,
		CategoryHeroicDungeon,
		CategoryRandomDungeon,
		CategoryRaid,
	}
}

// Difficulty is the content difficulty tier.
type Difficulty uint8

// Difficulty tiers.
const (
	DifficultyNormal Difficulty = iota
	DifficultyHeroic
	DifficultyRaid10
	DifficultyRaid25
	DifficultyRaid10Heroic
	DifficultyRaid25Heroic
)

// Elevated reports whether the tier is above normal dungeon difficulty.
// Gear gates and completion lockouts apply only to elevated tiers.
func (d Difficulty) Elevated() bool {
	return d != DifficultyNormal
}

// RoleMask is a bitset describing which roles a player is willing to fill.
type RoleMask uint8

// Role bits.
const (
	RoleNone   RoleMask = 0
	RoleLeader RoleMask = 1
	RoleTank   RoleMask = 2
	RoleHealer RoleMask = 4
	RoleDamage RoleMask = 8
)

// Has reports whether every bit in role is set.
func (m RoleMask) Has(role RoleMask) bool {
	return m&role == role
}

// Without returns the mask with the given bits cleared.
func (m RoleMask) Without(role RoleMask) RoleMask {
	return m &^ role
}

// Single reports whether the mask narrows to exactly one combat role.
// The leader-preference bit does not count as a combat role.
func (m RoleMask) Single() bool {
	combat := m.Without(RoleLeader)
	return combat == RoleTank || combat == RoleHealer || combat == RoleDamage
}

// Answer is one member's response in a proposal or boot vote.
type Answer int8

// Answer values.
const (
	AnswerPending Answer = -1
	AnswerDeny    Answer = 0
	AnswerAgree   Answer = 1
)

// PlayerState is the single matchmaking state tag carried by a player.
// It replaces the scattered queued/role-check/proposal/boot flags of older
// group finder designs with one explicit value.
type PlayerState uint8

// Player matchmaking states.
const (
	StateNone PlayerState = iota
	StateQueued
	StateRoleCheck
	StateProposal
	StateBoot
	StateInDungeon
	StateFinished
)

// String returns the state name for logs.
func (s PlayerState) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateQueued:
		return "queued"
	case StateRoleCheck:
		return "rolecheck"
	case StateProposal:
		return "proposal"
	case StateBoot:
		return "boot"
	case StateInDungeon:
		return "dungeon"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// stateTransitions defines the legal player state machine. Boot and role
// check are mutually exclusive: a member can only enter a boot vote from
// inside the instance, and a role check only from the queue.
var stateTransitions = map[PlayerState][]PlayerState{
	StateNone:      {StateQueued},
	StateQueued:    {StateNone, StateRoleCheck, StateProposal, StateInDungeon},
	StateRoleCheck: {StateNone, StateQueued, StateProposal},
	StateProposal:  {StateNone, StateQueued, StateInDungeon},
	StateBoot:      {StateNone, StateInDungeon, StateFinished},
	StateInDungeon: {StateNone, StateBoot, StateFinished, StateQueued},
	StateFinished:  {StateNone, StateQueued},
}

// CanTransition reports whether moving from s to next is a legal player
// state transition.
func (s PlayerState) CanTransition(next PlayerState) bool {
	if s == next {
		return true
	}
	for _, allowed := range stateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Penalty is a time-limited matchmaking restriction on a player.
type Penalty uint8

// Penalties.
const (
	// PenaltyCooldown blocks re-queueing for random content shortly after
	// entering an instance through the group finder.
	PenaltyCooldown Penalty = iota
	// PenaltyDeserter blocks queueing after abandoning a group early.
	PenaltyDeserter
)

// ContentSet is a set of content identifiers a candidate is searching for.
type ContentSet map[ContentID]struct{}

// NewContentSet builds a set from the given identifiers.
func NewContentSet(ids ...ContentID) ContentSet {
	set := make(ContentSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s ContentSet) Contains(id ContentID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s ContentSet) Add(id ContentID) {
	s[id] = struct{}{}
}

// Clone returns an independent copy of the set.
func (s ContentSet) Clone() ContentSet {
	out := make(ContentSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns the identifiers present in both sets.
func (s ContentSet) Intersect(other ContentSet) ContentSet {
	out := make(ContentSet)
	for id := range s {
		if other.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the identifiers in lexical order for deterministic
// iteration.
func (s ContentSet) Sorted() []ContentID {
	ids := make([]ContentID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Position is a point in world space.
type Position struct {
	X      float64
	Y      float64
	Z      float64
	Facing float64
}

// Destination is a teleport target.
type Destination struct {
	MapID    string
	Position Position
}
