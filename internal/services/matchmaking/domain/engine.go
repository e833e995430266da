package domain

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"
)

// Config holds the engine toggles and tuning constants.
type Config struct {
	// QueueEnabled gates the whole queue system.
	QueueEnabled bool

	// RaidExtendEnabled gates the extended-raid assembly path.
	RaidExtendEnabled bool

	// Debug relaxes group-size and role-composition requirements so small
	// test populations can form groups.
	Debug bool

	// FullUpdateInterval is the cadence of the expensive maintenance pass:
	// stale-entry cleanup, proposal and boot expiry, queue statistics.
	FullUpdateInterval time.Duration

	// ProposalTTL is the staleness window after which an unanswered
	// proposal is expired by the sweep.
	ProposalTTL time.Duration

	// BootTTL is the boot vote deadline window.
	BootTTL time.Duration

	// BootVotesNeeded is the floor on the agree threshold for a boot vote
	// to pass; parties with more than twice this many members require a
	// simple majority instead.
	BootVotesNeeded int

	// MaxPartySize bounds non-raid parties at admission.
	MaxPartySize int

	// Roles holds the composition minimums for a full dungeon group.
	Roles RoleRequirements

	// MaxPlayerLevel clamps reward table level bounds.
	MaxPlayerLevel int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		QueueEnabled:       true,
		RaidExtendEnabled:  false,
		FullUpdateInterval: 15 * time.Second,
		ProposalTTL:        2 * time.Minute,
		BootTTL:            2 * time.Minute,
		BootVotesNeeded:    3,
		MaxPartySize:       5,
		Roles:              DefaultRoleRequirements(),
		MaxPlayerLevel:     80,
	}
}

// Deps carries the engine's collaborators. World, Transport, Notifier and
// Catalog are required; Clock and RandIntn default to the stdlib.
type Deps struct {
	World     World
	Transport Transporter
	Notifier  Notifier
	Catalog   *Catalog
	Rewards   *RewardTable

	Clock    func() time.Time
	RandIntn func(n int) int
}

// Engine is the matchmaking engine: it owns the queue, the search matrix
// and the proposal and boot vote tables, and drives assembly from the
// scheduler tick. Construct one per server; there is no package-level
// state.
type Engine struct {
	cfg   Config
	world World
	port  Transporter
	ntf   Notifier
	elig  Eligibility

	catalog *Catalog
	rewards *RewardTable

	queue  *QueueManager
	search *SearchMatrix

	mu             sync.RWMutex
	proposals      map[ProposalID]*Proposal
	boots          map[PartyID]*BootVote
	statuses       map[Category]QueueStatus
	nextProposalID ProposalID

	updateTimer time.Duration
	clock       func() time.Time
	randIntn    func(n int) int

	assemblers map[Category]func(*Engine, Category)
}

// NewEngine builds an engine from its collaborators and config.
func NewEngine(deps Deps, cfg Config) (*Engine, error) {
	if deps.World == nil {
		return nil, errors.New("world resolver is required")
	}
	if deps.Transport == nil {
		return nil, errors.New("transporter is required")
	}
	if deps.Notifier == nil {
		return nil, errors.New("notifier is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("content catalog is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	randIntn := deps.RandIntn
	if randIntn == nil {
		randIntn = rand.Intn
	}
	rewards := deps.Rewards
	if rewards == nil {
		rewards = &RewardTable{rows: make(map[ContentID][]RewardRow)}
	}

	engine := &Engine{
		cfg:            cfg,
		world:          deps.World,
		port:           deps.Transport,
		ntf:            deps.Notifier,
		elig:           Eligibility{Catalog: deps.Catalog, MaxPartySize: cfg.MaxPartySize},
		catalog:        deps.Catalog,
		rewards:        rewards,
		queue:          NewQueueManager(clock),
		search:         NewSearchMatrix(),
		proposals:      make(map[ProposalID]*Proposal),
		boots:          make(map[PartyID]*BootVote),
		statuses:       make(map[Category]QueueStatus),
		nextProposalID: 1,
		updateTimer:    cfg.FullUpdateInterval,
		clock:          clock,
		randIntn:       randIntn,
	}

	// Assembly strategy per category: dungeon-like categories complete
	// parties from the solo queue then form fresh groups from the search
	// matrix; the raid category only runs the extended-raid path.
	dungeonLike := func(e *Engine, category Category) {
		e.completeParties(category)
		e.createGroups(category)
	}
	engine.assemblers = map[Category]func(*Engine, Category){
		CategoryDungeon:       dungeonLike,
		CategoryQuest:         dungeonLike,
		CategoryZone:          dungeonLike,
		CategoryHeroicDungeon: dungeonLike,
		CategoryRandomDungeon: dungeonLike,
		CategoryRaid:          (*Engine).extendRaids,
	}

	return engine, nil
}

// setPlayerState applies a matchmaking state transition, logging illegal
// ones instead of failing: a disconnect can leave a player one step behind
// the engine's view.
func (e *Engine) setPlayerState(player Player, next PlayerState) {
	current := player.State()
	if !current.CanTransition(next) {
		log.Printf("matchmaking: player %s illegal state transition %s -> %s", player.ID(), current, next)
	}
	player.SetState(next)
}

// Join admits a solo player or, when the player leads a party, the whole
// party into the category queue. The admission outcome is delivered through
// the notifier and returned for synchronous callers.
func (e *Engine) Join(playerID PlayerID, category Category) JoinResult {
	if !e.cfg.QueueEnabled {
		return JoinErrQueueDisabled
	}
	player, ok := e.world.Player(playerID)
	if !ok || !player.Connected() {
		return JoinErrMemberUnreachable
	}

	var party Party
	if partyID := player.PartyID(); partyID != "" {
		party, ok = e.world.Party(partyID)
		if ok && party.LeaderID() != playerID {
			e.ntf.JoinResult(playerID, JoinErrNotLeader)
			return JoinErrNotLeader
		}
		if !ok {
			party = nil
		}
	}

	if category == CategoryNone {
		e.ntf.JoinResult(playerID, JoinErrEmptySelection)
		return JoinErrEmptySelection
	}

	if e.midProposal(player, party) {
		e.ntf.JoinResult(playerID, JoinErrAlreadyInProposal)
		return JoinErrAlreadyInProposal
	}

	var result JoinResult
	if party != nil {
		result = e.elig.PartyJoinResult(party, category, e.world)
	} else {
		result = e.elig.PlayerJoinResult(player)
	}
	if result != JoinOK {
		e.setPlayerState(player, StateNone)
		e.ntf.JoinResult(playerID, result)
		return result
	}

	if party != nil {
		// Party members can no longer be matched individually.
		for _, memberID := range party.MemberIDs() {
			if member, ok := e.world.Player(memberID); ok {
				e.queue.Remove(PlayerRef(memberID))
				e.search.Remove(memberID, member.RequestedContent())
				e.setPlayerState(member, StateQueued)
			}
		}
		e.queue.Add(PartyRef(party.ID()), category, false)
		if category == CategoryRaid && e.cfg.RaidExtendEnabled {
			party.ConvertToGroupFinder(category)
		}
	} else {
		e.queue.Add(PlayerRef(playerID), category, false)
		e.search.Add(playerID, player.RequestedContent())
	}

	e.setPlayerState(player, StateQueued)
	e.ntf.JoinResult(playerID, JoinOK)
	return JoinOK
}

// midProposal reports whether the player or its party already has an active
// proposal, which blocks re-admission until it resolves.
func (e *Engine) midProposal(player Player, party Party) bool {
	if player.State() == StateProposal {
		return true
	}
	if party != nil && party.ProposalID() != 0 {
		e.mu.RLock()
		_, active := e.proposals[party.ProposalID()]
		e.mu.RUnlock()
		return active
	}
	return false
}

// Leave removes the player (or its party, when the player leads one) from
// the queue and search matrix. Leaving while not queued is a no-op.
func (e *Engine) Leave(playerID PlayerID) {
	player, ok := e.world.Player(playerID)
	if !ok {
		// The entity is gone; scrub the identifier from every table.
		e.queue.Remove(PlayerRef(playerID))
		e.search.RemoveEverywhere(playerID)
		return
	}

	category := CategoryNone
	if partyID := player.PartyID(); partyID != "" {
		if party, ok := e.world.Party(partyID); ok {
			if party.LeaderID() != playerID {
				return
			}
			if entry, queued := e.queue.Entry(PartyRef(partyID)); queued {
				category = entry.Category
			}
			e.queue.Remove(PartyRef(partyID))
		}
	}
	if entry, queued := e.queue.Entry(PlayerRef(playerID)); queued {
		category = entry.Category
	}
	e.queue.Remove(PlayerRef(playerID))
	e.search.Remove(playerID, player.RequestedContent())

	if player.State() == StateQueued || player.State() == StateRoleCheck {
		e.setPlayerState(player, StateNone)
	}
	player.SetRequestedContent(nil)
	e.ntf.QueueRemoved(playerID, category)
}

// Update is the scheduler tick. All periodic maintenance (stale-entry
// cleanup, proposal and boot expiry, queue statistics) runs on the
// full-update cadence; assembly runs every tick per category.
func (e *Engine) Update(elapsed time.Duration) {
	fullUpdate := false
	if e.updateTimer <= elapsed {
		fullUpdate = true
		e.updateTimer = e.cfg.FullUpdateInterval
	} else {
		e.updateTimer -= elapsed
	}

	if fullUpdate {
		e.search.Cleanup(func(id PlayerID) bool {
			player, ok := e.world.Player(id)
			return ok && player.Connected()
		})
		e.sweepProposals()
		e.sweepBoots()
	}

	if e.queue.Empty() {
		return
	}

	for _, category := range Categories() {
		if len(e.queue.Players(category)) == 0 && len(e.queue.Parties(category)) == 0 {
			continue
		}
		assemble, ok := e.assemblers[category]
		if !ok {
			log.Printf("matchmaking: no assembler for category %s", category)
			continue
		}
		if category == CategoryRaid && !e.cfg.RaidExtendEnabled {
			continue
		}
		assemble(e, category)
		if fullUpdate {
			e.updateQueueStatus(category)
		}
	}
}
