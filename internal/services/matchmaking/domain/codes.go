package domain

import "errors"

// JoinResult is the admission outcome reported back to the requester.
type JoinResult uint8

// Join results.
const (
	JoinOK JoinResult = iota
	// JoinErrNotLeader rejects a party join requested by a non-leader.
	JoinErrNotLeader
	// JoinErrRestrictedActivity rejects players in arenas or battlegrounds.
	JoinErrRestrictedActivity
	// JoinErrDeserter rejects players under the deserter penalty.
	JoinErrDeserter
	// JoinErrCooldown rejects players under the random-content cooldown.
	JoinErrCooldown
	// JoinErrEmptySelection rejects joins with no requested content.
	JoinErrEmptySelection
	// JoinErrPartyTooLarge rejects oversized non-raid parties.
	JoinErrPartyTooLarge
	// JoinErrMismatchedCategory rejects raid parties requesting non-raid
	// content.
	JoinErrMismatchedCategory
	// JoinErrMemberUnreachable rejects parties with a disconnected member.
	JoinErrMemberUnreachable
	// JoinErrQueueDisabled rejects joins while the queue system is off.
	JoinErrQueueDisabled
	// JoinErrRoleCheckFailed reports a terminally failed role check.
	JoinErrRoleCheckFailed
	// JoinErrAlreadyInProposal rejects re-admission while a proposal for the
	// candidate is still pending.
	JoinErrAlreadyInProposal
)

// String returns the join result name for logs.
func (r JoinResult) String() string {
	switch r {
	case JoinOK:
		return "ok"
	case JoinErrNotLeader:
		return "not_leader"
	case JoinErrRestrictedActivity:
		return "restricted_activity"
	case JoinErrDeserter:
		return "deserter"
	case JoinErrCooldown:
		return "cooldown"
	case JoinErrEmptySelection:
		return "empty_selection"
	case JoinErrPartyTooLarge:
		return "party_too_large"
	case JoinErrMismatchedCategory:
		return "mismatched_category"
	case JoinErrMemberUnreachable:
		return "member_unreachable"
	case JoinErrQueueDisabled:
		return "queue_disabled"
	case JoinErrRoleCheckFailed:
		return "role_check_failed"
	case JoinErrAlreadyInProposal:
		return "already_in_proposal"
	default:
		return "unknown"
	}
}

// LockStatus is the reason (if any) a player cannot enter a given content
// identifier.
type LockStatus uint8

// Lock statuses, in evaluation order.
const (
	LockOK LockStatus = iota
	LockInsufficientExpansion
	LockRaidLocked
	LockTooLowLevel
	LockTooHighLevel
	LockQuestNotCompleted
	LockMissingItem
	LockTooLowGearScore
	LockTooHighGearScore
)

// String returns the lock status name for logs.
func (s LockStatus) String() string {
	switch s {
	case LockOK:
		return "ok"
	case LockInsufficientExpansion:
		return "insufficient_expansion"
	case LockRaidLocked:
		return "raid_locked"
	case LockTooLowLevel:
		return "too_low_level"
	case LockTooHighLevel:
		return "too_high_level"
	case LockQuestNotCompleted:
		return "quest_not_completed"
	case LockMissingItem:
		return "missing_item"
	case LockTooLowGearScore:
		return "too_low_gear_score"
	case LockTooHighGearScore:
		return "too_high_gear_score"
	default:
		return "unknown"
	}
}

// TeleportError reports why instance entry was refused.
type TeleportError uint8

// Teleport errors.
const (
	TeleportOK TeleportError = iota
	TeleportErrNoDestination
	TeleportErrDifficultyMismatch
	TeleportErrPlayerDead
	TeleportErrLocked
	TeleportErrNoParty
)

// String returns the teleport error name for logs.
func (e TeleportError) String() string {
	switch e {
	case TeleportOK:
		return "ok"
	case TeleportErrNoDestination:
		return "no_destination"
	case TeleportErrDifficultyMismatch:
		return "difficulty_mismatch"
	case TeleportErrPlayerDead:
		return "player_dead"
	case TeleportErrLocked:
		return "locked"
	case TeleportErrNoParty:
		return "no_party"
	default:
		return "unknown"
	}
}

// RoleCheckState tracks a party role check.
type RoleCheckState uint8

// Role check states.
const (
	RoleCheckNone RoleCheckState = iota
	RoleCheckInitiating
	RoleCheckMissingRole
	// RoleCheckWrongRoles is a terminal failure: the declared roles cannot
	// satisfy the composition minimums.
	RoleCheckWrongRoles
	RoleCheckFinished
)

// Boot vote errors. These surface caller mistakes; everything else in the
// boot flow degrades silently.
var (
	// ErrNoParty indicates the initiator or voter has no party.
	ErrNoParty = errors.New("player has no party")
	// ErrTargetUnresolved indicates the boot target does not resolve.
	ErrTargetUnresolved = errors.New("boot target does not resolve")
	// ErrVoteInProgress indicates the party already has an active boot vote.
	ErrVoteInProgress = errors.New("boot vote already in progress")
	// ErrAlreadyVoted indicates the voter has already cast a vote.
	ErrAlreadyVoted = errors.New("member already voted")
	// ErrNoActiveVote indicates the party has no boot vote to answer.
	ErrNoActiveVote = errors.New("no active boot vote")
	// ErrTargetNotMember indicates the boot target is not in the party.
	ErrTargetNotMember = errors.New("boot target is not a party member")
	// ErrNoKicksLeft indicates the party exhausted its boot allowance.
	ErrNoKicksLeft = errors.New("party has no kicks left")
)
