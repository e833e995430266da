// Package storage defines persistence contracts for the matchmaking
// service's static tables: the content catalog and the reward rows.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ContentRecord is one queueable activity row as persisted.
type ContentRecord struct {
	ID         string
	Name       string
	Category   int
	Difficulty int
	GroupSize  int
	MinLevel   int
	MaxLevel   int
	Expansion  int

	MapID          string
	EntranceX      float64
	EntranceY      float64
	EntranceZ      float64
	EntranceFacing float64

	MinGearScore int
	MaxGearScore int
}

// RewardRecord is one reward row as persisted. Quest references and amounts
// are split into first-time and repeat variants.
type RewardRecord struct {
	ContentID string
	MaxLevel  int

	FirstQuestRef   string
	FirstMoney      int64
	FirstExperience int64

	RepeatQuestRef   string
	RepeatMoney      int64
	RepeatExperience int64
}

// Store loads and maintains the matchmaking static tables. Implementations
// must be safe for use from a single loader goroutine at startup.
type Store interface {
	ListContent(ctx context.Context) ([]ContentRecord, error)
	ListRewards(ctx context.Context) ([]RewardRecord, error)

	// ContentByID returns one content row, or ErrNotFound.
	ContentByID(ctx context.Context, id string) (ContentRecord, error)

	// PutContent inserts or replaces a content row.
	PutContent(ctx context.Context, record ContentRecord) error

	// PutReward inserts or replaces a reward row.
	PutReward(ctx context.Context, record RewardRecord) error

	Close() error
}
