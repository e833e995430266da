package domain

// Player is the narrow view of a player entity the group finder reads and
// writes. Implementations live in the world simulation; the engine never
// holds one across operations.
type Player interface {
	ID() PlayerID
	Connected() bool
	Alive() bool
	Level() int
	GearScore() int
	Expansion() int

	// InRestrictedActivity reports whether the player is in an arena or
	// battleground context that blocks queue admission.
	InRestrictedActivity() bool

	HasPenalty(Penalty) bool
	ApplyPenalty(Penalty)
	ClearPenalty(Penalty)

	RequestedContent() ContentSet
	SetRequestedContent(ContentSet)

	Roles() RoleMask
	SetRoles(RoleMask)

	State() PlayerState
	SetState(PlayerState)

	// PartyID returns the player's current party, or "" when solo.
	PartyID() PartyID

	// Ignores reports whether other is on this player's ignore list.
	Ignores(other PlayerID) bool

	// HasCompleted reports whether the player already finished the given
	// content since its lockout reset.
	HasCompleted(ContentID) bool

	// LockedOut reports an existing completion lock for the map at the
	// given difficulty.
	LockedOut(mapID string, difficulty Difficulty) bool

	// AccessStatus evaluates zone/trigger access gates (quest chains,
	// required items) for the map at the given difficulty.
	AccessStatus(mapID string, difficulty Difficulty) LockStatus

	MapID() string
	Position() Position

	Teleported() bool
	SetTeleported(bool)
}

// Party is the narrow view of a party entity the group finder reads and
// writes.
type Party interface {
	ID() PartyID
	MemberIDs() []PlayerID
	Size() int
	LeaderID() PlayerID
	IsRaid() bool

	// GroupFinder reports whether the party was formed (or converted) by the
	// group finder.
	GroupFinder() bool
	ConvertToGroupFinder(Category)

	RequestedContent() ContentSet

	Difficulty() Difficulty
	SetDifficulty(Difficulty)

	// ContentID returns the bound concrete content, or "" when unset.
	ContentID() ContentID
	SetContent(ContentID)

	// ProposalID returns the active proposal binding, or 0 when none.
	ProposalID() ProposalID
	SetProposal(ProposalID)

	KicksLeft() int
	DecrementKicksLeft()
}

// World resolves identifiers to live entities and performs membership
// mutations on behalf of the engine. Every method may report "gone": the
// engine treats that as a non-fatal removal trigger.
type World interface {
	Player(PlayerID) (Player, bool)
	Party(PartyID) (Party, bool)

	// CreateParty forms a new party led by the given player.
	CreateParty(leader PlayerID) (Party, error)

	AddMember(PartyID, PlayerID) error
	RemoveMember(PartyID, PlayerID) error
}

// Transporter moves players into and out of instance space.
type Transporter interface {
	// Teleport moves the player to the destination and is expected to
	// record the player's pre-instance anchor point.
	Teleport(PlayerID, Destination)

	// ReturnToAnchor moves the player back to its pre-instance anchor.
	ReturnToAnchor(PlayerID)
}

// Notifier delivers fire-and-forget matchmaking updates to players. The
// engine requires no acknowledgment.
type Notifier interface {
	JoinResult(PlayerID, JoinResult)
	QueueRemoved(PlayerID, Category)
	RoleCheckUpdate(PlayerID, RoleCheckState)
	ProposalUpdate(PlayerID, ProposalID, ProposalState)
	BootUpdate(PlayerID, BootStatus)
	TeleportFailed(PlayerID, TeleportError)
	RewardGranted(id PlayerID, content ContentID, reward Reward, firstTime bool)
	OfferContinue(PlayerID, ContentID)
}

// BootStatus is the boot vote snapshot sent with boot updates.
type BootStatus struct {
	Target     PlayerID
	Reason     string
	InProgress bool
	AgreeCount int
	VotedCount int
	Required   int
}
