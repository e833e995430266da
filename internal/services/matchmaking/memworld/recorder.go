package memworld

import (
	"sync"

	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
)

// Transport records teleports instead of moving anyone.
type Transport struct {
	mu       sync.Mutex
	moves    map[domain.PlayerID]domain.Destination
	returned []domain.PlayerID
}

// NewTransport builds an empty transport recorder.
func NewTransport() *Transport {
	return &Transport{moves: make(map[domain.PlayerID]domain.Destination)}
}

func (t *Transport) Teleport(id domain.PlayerID, dest domain.Destination) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.moves[id] = dest
}

func (t *Transport) ReturnToAnchor(id domain.PlayerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.returned = append(t.returned, id)
}

// DestinationOf returns the last recorded teleport destination for id.
func (t *Transport) DestinationOf(id domain.PlayerID) (domain.Destination, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	dest, ok := t.moves[id]
	return dest, ok
}

// Returned reports whether id was returned to its anchor.
func (t *Transport) Returned(id domain.PlayerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, returned := range t.returned {
		if returned == id {
			return true
		}
	}
	return false
}

// Notification is one recorded outbound update.
type Notification struct {
	Kind   string
	Player domain.PlayerID

	JoinResult domain.JoinResult
	Category   domain.Category
	RoleCheck  domain.RoleCheckState
	Proposal   domain.ProposalID
	State      domain.ProposalState
	Boot       domain.BootStatus
	Teleport   domain.TeleportError
	Content    domain.ContentID
	Reward     domain.Reward
	FirstTime  bool
}

// Notification kinds.
const (
	KindJoinResult     = "join_result"
	KindQueueRemoved   = "queue_removed"
	KindRoleCheck      = "role_check"
	KindProposalUpdate = "proposal_update"
	KindBootUpdate     = "boot_update"
	KindTeleportFailed = "teleport_failed"
	KindRewardGranted  = "reward_granted"
	KindOfferContinue  = "offer_continue"
)

// Recorder captures outbound notifications for assertions and for the
// standalone server's log sink.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

// NewRecorder builds an empty notification recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, n)
}

func (r *Recorder) JoinResult(id domain.PlayerID, result domain.JoinResult) {
	r.record(Notification{Kind: KindJoinResult, Player: id, JoinResult: result})
}

func (r *Recorder) QueueRemoved(id domain.PlayerID, category domain.Category) {
	r.record(Notification{Kind: KindQueueRemoved, Player: id, Category: category})
}

func (r *Recorder) RoleCheckUpdate(id domain.PlayerID, state domain.RoleCheckState) {
	r.record(Notification{Kind: KindRoleCheck, Player: id, RoleCheck: state})
}

func (r *Recorder) ProposalUpdate(id domain.PlayerID, proposal domain.ProposalID, state domain.ProposalState) {
	r.record(Notification{Kind: KindProposalUpdate, Player: id, Proposal: proposal, State: state})
}

func (r *Recorder) BootUpdate(id domain.PlayerID, status domain.BootStatus) {
	r.record(Notification{Kind: KindBootUpdate, Player: id, Boot: status})
}

func (r *Recorder) TeleportFailed(id domain.PlayerID, terr domain.TeleportError) {
	r.record(Notification{Kind: KindTeleportFailed, Player: id, Teleport: terr})
}

func (r *Recorder) RewardGranted(id domain.PlayerID, content domain.ContentID, reward domain.Reward, firstTime bool) {
	r.record(Notification{Kind: KindRewardGranted, Player: id, Content: content, Reward: reward, FirstTime: firstTime})
}

func (r *Recorder) OfferContinue(id domain.PlayerID, content domain.ContentID) {
	r.record(Notification{Kind: KindOfferContinue, Player: id, Content: content})
}

// All snapshots every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.entries))
	copy(out, r.entries)
	return out
}

// For snapshots the notifications delivered to one player.
func (r *Recorder) For(id domain.PlayerID) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.entries {
		if n.Player == id {
			out = append(out, n)
		}
	}
	return out
}

// Last returns the most recent notification of the given kind for the
// player.
func (r *Recorder) Last(id domain.PlayerID, kind string) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Player == id && r.entries[i].Kind == kind {
			return r.entries[i], true
		}
	}
	return Notification{}, false
}

// Reset clears the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

var (
	_ domain.Transporter = (*Transport)(nil)
	_ domain.Notifier    = (*Recorder)(nil)
)
