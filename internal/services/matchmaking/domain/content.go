package domain

import "sort"

// Content describes one queueable activity and its requirements. Rows are
// read-only after catalog load.
type Content struct {
	ID         ContentID
	Name       string
	Category   Category
	Difficulty Difficulty

	// GroupSize is the full group headcount for this content.
	GroupSize int

	MinLevel  int
	MaxLevel  int
	Expansion int

	// MapID and Entrance locate the instance entrance in world space.
	MapID    string
	Entrance Position

	// MinGearScore and MaxGearScore bound admission for elevated
	// difficulties. Zero means unbounded.
	MinGearScore int
	MaxGearScore int
}

// Random reports whether this row is a random-content placeholder that must
// be resolved to a concrete instance at commit time.
func (c *Content) Random() bool {
	return c.Category == CategoryRandomDungeon
}

// Catalog is the static content lookup, keyed by content identifier.
type Catalog struct {
	byID    map[ContentID]*Content
	ordered []*Content
}

// NewCatalog builds a catalog from content rows. Later duplicates of an
// identifier replace earlier ones.
func NewCatalog(rows []Content) *Catalog {
	catalog := &Catalog{byID: make(map[ContentID]*Content, len(rows))}
	for i := range rows {
		row := rows[i]
		if row.ID == "" {
			continue
		}
		if _, exists := catalog.byID[row.ID]; !exists {
			catalog.ordered = append(catalog.ordered, &row)
		}
		catalog.byID[row.ID] = &row
	}
	sort.Slice(catalog.ordered, func(i, j int) bool {
		return catalog.ordered[i].ID < catalog.ordered[j].ID
	})
	return catalog
}

// Lookup returns the content row for id.
func (c *Catalog) Lookup(id ContentID) (*Content, bool) {
	entry, ok := c.byID[id]
	return entry, ok
}

// All returns every content row in identifier order.
func (c *Catalog) All() []*Content {
	return c.ordered
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// ConcreteFor lists the concrete dungeon rows a random placeholder can
// resolve to: plain or heroic dungeons at the placeholder's difficulty.
func (c *Catalog) ConcreteFor(random *Content) []*Content {
	if random == nil {
		return nil
	}
	var out []*Content
	for _, entry := range c.ordered {
		if entry.Category != CategoryDungeon && entry.Category != CategoryHeroicDungeon {
			continue
		}
		if entry.Difficulty != random.Difficulty {
			continue
		}
		out = append(out, entry)
	}
	return out
}
