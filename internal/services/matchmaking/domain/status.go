package domain

import "time"

// QueueStatus aggregates one category's solo queue for status displays:
// how many of each role are waiting and for how long on average.
type QueueStatus struct {
	Tanks   int
	Healers int
	Damage  int

	AverageWait time.Duration
	UpdatedAt   time.Time
}

// QueueStatus returns the last aggregated status for the category.
// Aggregation runs on the full-update tick.
func (e *Engine) QueueStatus(category Category) QueueStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statuses[category]
}

func (e *Engine) updateQueueStatus(category Category) {
	now := e.clock()
	status := QueueStatus{UpdatedAt: now}

	var totalWait time.Duration
	waiting := 0
	for _, entry := range e.queue.Players(category) {
		player, ok := e.world.Player(PlayerID(entry.Ref.ID))
		if !ok || !player.Connected() {
			continue
		}
		roles := player.Roles()
		if roles.Has(RoleTank) {
			status.Tanks++
		}
		if roles.Has(RoleHealer) {
			status.Healers++
		}
		if roles.Has(RoleDamage) {
			status.Damage++
		}
		totalWait += now.Sub(entry.JoinedAt)
		waiting++
	}
	if waiting > 0 {
		status.AverageWait = totalWait / time.Duration(waiting)
	}

	e.mu.Lock()
	e.statuses[category] = status
	e.mu.Unlock()
}
