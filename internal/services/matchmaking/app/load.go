package server

import (
	"context"
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/matchmaking/domain"
	"github.com/duskhaven/duskhaven/internal/services/matchmaking/storage"
)

// loadTables reads the content catalog and reward rows from storage and
// builds the domain tables the engine queries.
func loadTables(ctx context.Context, store storage.Store, maxLevel int) (*domain.Catalog, *domain.RewardTable, error) {
	contentRecords, err := store.ListContent(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load content: %w", err)
	}
	catalog := domain.NewCatalog(toContent(contentRecords))

	rewardRecords, err := store.ListRewards(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load rewards: %w", err)
	}
	if maxLevel <= 0 {
		maxLevel = domain.DefaultConfig().MaxPlayerLevel
	}
	rewards := domain.LoadRewardTable(toRewardRows(rewardRecords), catalog, maxLevel, nil)
	return catalog, rewards, nil
}

func toContent(records []storage.ContentRecord) []domain.Content {
	out := make([]domain.Content, 0, len(records))
	for _, record := range records {
		out = append(out, domain.Content{
			ID:         domain.ContentID(record.ID),
			Name:       record.Name,
			Category:   domain.Category(record.Category),
			Difficulty: domain.Difficulty(record.Difficulty),
			GroupSize:  record.GroupSize,
			MinLevel:   record.MinLevel,
			MaxLevel:   record.MaxLevel,
			Expansion:  record.Expansion,
			MapID:      record.MapID,
			Entrance: domain.Position{
				X:      record.EntranceX,
				Y:      record.EntranceY,
				Z:      record.EntranceZ,
				Facing: record.EntranceFacing,
			},
			MinGearScore: record.MinGearScore,
			MaxGearScore: record.MaxGearScore,
		})
	}
	return out
}

func toRewardRows(records []storage.RewardRecord) []domain.RewardRow {
	out := make([]domain.RewardRow, 0, len(records))
	for _, record := range records {
		out = append(out, domain.RewardRow{
			ContentID: domain.ContentID(record.ContentID),
			MaxLevel:  record.MaxLevel,
			FirstTime: domain.Reward{
				QuestRef:   record.FirstQuestRef,
				Money:      record.FirstMoney,
				Experience: record.FirstExperience,
			},
			Repeat: domain.Reward{
				QuestRef:   record.RepeatQuestRef,
				Money:      record.RepeatMoney,
				Experience: record.RepeatExperience,
			},
		})
	}
	return out
}
