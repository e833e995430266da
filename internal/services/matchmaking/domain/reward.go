package domain

import (
	"log"
	"sort"
)

// Reward is one reward grant: a quest-style reference plus direct money and
// experience variables.
type Reward struct {
	QuestRef   string
	Money      int64
	Experience int64
}

// RewardRow holds the rewards for one content identifier up to a level
// bound. FirstTime applies to the first qualifying completion of the day,
// Repeat to every later one.
type RewardRow struct {
	ContentID ContentID
	MaxLevel  int
	FirstTime Reward
	Repeat    Reward
}

// RewardTable answers "best reward the requester qualifies for" per content
// identifier. Rows are ordered ascending by MaxLevel at load time; the
// query relies on that ordering and never re-sorts.
type RewardTable struct {
	rows map[ContentID][]RewardRow
}

// QuestValidator reports whether a quest reference exists. Unknown
// references are cleared from loaded rows.
type QuestValidator func(ref string) bool

// LoadRewardTable validates and orders reward rows. Malformed rows degrade
// with a logged warning instead of failing the load: rows for unknown
// content are dropped, unreachable level bounds are clamped to maxLevel,
// and unknown quest references are cleared.
func LoadRewardTable(rows []RewardRow, catalog *Catalog, maxLevel int, validQuest QuestValidator) *RewardTable {
	table := &RewardTable{rows: make(map[ContentID][]RewardRow)}
	loaded := 0
	for _, row := range rows {
		if catalog != nil {
			if _, ok := catalog.Lookup(row.ContentID); !ok {
				log.Printf("reward table: content %q does not exist, dropping row", row.ContentID)
				continue
			}
		}
		if row.MaxLevel <= 0 || row.MaxLevel > maxLevel {
			log.Printf("reward table: level %d for content %q can never be reached, clamping to %d", row.MaxLevel, row.ContentID, maxLevel)
			row.MaxLevel = maxLevel
		}
		if validQuest != nil {
			if row.FirstTime.QuestRef != "" && !validQuest(row.FirstTime.QuestRef) {
				log.Printf("reward table: first quest %q for content %q does not exist, clearing", row.FirstTime.QuestRef, row.ContentID)
				row.FirstTime.QuestRef = ""
			}
			if row.Repeat.QuestRef != "" && !validQuest(row.Repeat.QuestRef) {
				log.Printf("reward table: repeat quest %q for content %q does not exist, clearing", row.Repeat.QuestRef, row.ContentID)
				row.Repeat.QuestRef = ""
			}
		}
		table.rows[row.ContentID] = append(table.rows[row.ContentID], row)
		loaded++
	}
	// Load-time ordering invariant: RewardFor walks rows in ascending
	// MaxLevel order.
	for id := range table.rows {
		rows := table.rows[id]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].MaxLevel < rows[j].MaxLevel })
	}
	log.Printf("reward table: loaded %d rows", loaded)
	return table
}

// RewardFor returns the first row whose level bound covers the requester,
// falling back to the last row when the requester outlevels them all.
func (t *RewardTable) RewardFor(contentID ContentID, level int) (RewardRow, bool) {
	rows := t.rows[contentID]
	if len(rows) == 0 {
		return RewardRow{}, false
	}
	best := rows[0]
	for _, row := range rows {
		best = row
		if row.MaxLevel >= level {
			break
		}
	}
	return best, true
}

// Len returns the total number of loaded rows.
func (t *RewardTable) Len() int {
	total := 0
	for _, rows := range t.rows {
		total += len(rows)
	}
	return total
}
