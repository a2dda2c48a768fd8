package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"rpbot/internal/domain"
	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/input"
	"rpbot/internal/ports/output"
)

// LeaderboardSize is the number of rows shown on both leaderboards.
const LeaderboardSize = 10

var _ input.LedgerUseCase = (*LedgerService)(nil)

type LedgerService struct {
	repo      output.LedgerRepository
	activity  output.ActivityLog
	metrics   output.Metrics
	whitelist map[string]struct{}
	now       func() time.Time
}

func NewLedgerService(
	repo output.LedgerRepository,
	activity output.ActivityLog,
	metrics output.Metrics,
	whitelistedUsers []string,
) *LedgerService {
	whitelist := make(map[string]struct{}, len(whitelistedUsers))
	for _, id := range whitelistedUsers {
		whitelist[id] = struct{}{}
	}
	return &LedgerService{
		repo:      repo,
		activity:  activity,
		metrics:   metrics,
		whitelist: whitelist,
		now:       time.Now,
	}
}

func (s *LedgerService) IsWhitelisted(userID string) bool {
	_, ok := s.whitelist[userID]
	return ok
}

func (s *LedgerService) AddRP(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	if err := validate(guildID, amount); err != nil {
		return entities.Balance{}, err
	}
	b, err := s.repo.AddWeekly(ctx, guildID, userID, amount)
	if err != nil {
		return entities.Balance{}, err
	}
	s.record(ctx, domain.MutationAdd, userID, amount, b)
	return b, nil
}

func (s *LedgerService) RevokeRP(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	if err := validate(guildID, amount); err != nil {
		return entities.Balance{}, err
	}
	b, err := s.repo.RevokeWeekly(ctx, guildID, userID, amount)
	if err != nil {
		return entities.Balance{}, err
	}
	s.record(ctx, domain.MutationRevoke, userID, amount, b)
	return b, nil
}

// Totals returns the user's balance, or a zero balance when nothing was ever
// recorded for them.
func (s *LedgerService) Totals(ctx context.Context, guildID, userID string) (entities.Balance, error) {
	if guildID == "" {
		return entities.Balance{}, domain.ErrGuildOnly
	}
	b, err := s.repo.Find(ctx, guildID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBalanceNotFound) {
			return entities.Balance{GuildID: guildID, UserID: userID}, nil
		}
		return entities.Balance{}, err
	}
	return *b, nil
}

func (s *LedgerService) Leaderboard(ctx context.Context, guildID string) ([]entities.Balance, error) {
	if guildID == "" {
		return nil, domain.ErrGuildOnly
	}
	return s.repo.TopWeekly(ctx, guildID, LeaderboardSize)
}

func (s *LedgerService) HistoricalLeaderboard(ctx context.Context, guildID string) ([]entities.Balance, error) {
	if guildID == "" {
		return nil, domain.ErrGuildOnly
	}
	return s.repo.TopHistorical(ctx, guildID, LeaderboardSize)
}

func (s *LedgerService) GrantRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	if err := s.authorize(guildID, actorID); err != nil {
		return entities.Balance{}, err
	}
	if err := validate(guildID, amount); err != nil {
		return entities.Balance{}, err
	}
	b, err := s.repo.AddWeekly(ctx, guildID, targetID, amount)
	if err != nil {
		return entities.Balance{}, err
	}
	s.record(ctx, domain.MutationGrant, actorID, amount, b)
	return b, nil
}

func (s *LedgerService) TakeRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	if err := s.authorize(guildID, actorID); err != nil {
		return entities.Balance{}, err
	}
	if err := validate(guildID, amount); err != nil {
		return entities.Balance{}, err
	}
	b, err := s.repo.RevokeWeekly(ctx, guildID, targetID, amount)
	if err != nil {
		return entities.Balance{}, err
	}
	s.record(ctx, domain.MutationTake, actorID, amount, b)
	return b, nil
}

func (s *LedgerService) RevokeHistoricalRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error) {
	if err := s.authorize(guildID, actorID); err != nil {
		return entities.Balance{}, err
	}
	if err := validate(guildID, amount); err != nil {
		return entities.Balance{}, err
	}
	b, err := s.repo.RevokeHistorical(ctx, guildID, targetID, amount)
	if err != nil {
		return entities.Balance{}, err
	}
	s.record(ctx, domain.MutationRevokeHistorical, actorID, amount, b)
	return b, nil
}

// SimulateWeeklyWipe runs the rollover for a single guild right away. The
// returned summary is empty (not nil) when the guild had no weekly RP.
func (s *LedgerService) SimulateWeeklyWipe(ctx context.Context, guildID, actorID string) (*entities.Rollover, error) {
	if err := s.authorize(guildID, actorID); err != nil {
		return nil, err
	}
	rollovers, err := s.rollover(ctx, guildID, domain.TriggerManual)
	if err != nil {
		return nil, err
	}
	if len(rollovers) == 0 {
		return &entities.Rollover{GuildID: guildID, ExecutedAt: s.now().UTC()}, nil
	}
	return &rollovers[0], nil
}

// WeeklyRollover is the scheduled batch over every guild.
func (s *LedgerService) WeeklyRollover(ctx context.Context) ([]entities.Rollover, error) {
	return s.rollover(ctx, "", domain.TriggerSchedule)
}

func (s *LedgerService) rollover(ctx context.Context, guildID, trigger string) ([]entities.Rollover, error) {
	rollovers, err := s.repo.Rollover(ctx, guildID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("weekly rollover: %w", err)
	}
	s.metrics.RolloverCompleted(trigger, rollovers)
	if err := s.activity.LogRollover(ctx, trigger, rollovers); err != nil {
		log.Warn().Err(err).Str("trigger", trigger).Msg("⚠️ Rollover report not delivered")
	}
	var archived int64
	for _, r := range rollovers {
		archived += r.ArchivedRP
	}
	log.Info().
		Str("trigger", trigger).
		Int("guilds", len(rollovers)).
		Int64("archived_rp", archived).
		Msg("✅ Weekly RP reset completed")
	return rollovers, nil
}

func (s *LedgerService) authorize(guildID, actorID string) error {
	if guildID == "" {
		return domain.ErrGuildOnly
	}
	if !s.IsWhitelisted(actorID) {
		return domain.ErrNotWhitelisted
	}
	return nil
}

func (s *LedgerService) record(ctx context.Context, kind, actorID string, amount int64, b entities.Balance) {
	s.metrics.LedgerMutation(kind)
	m := entities.Mutation{
		Kind:     kind,
		GuildID:  b.GuildID,
		ActorID:  actorID,
		TargetID: b.UserID,
		Amount:   amount,
		Balance:  b,
		At:       s.now().UTC(),
	}
	if err := s.activity.LogMutation(ctx, m); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("guild", b.GuildID).Msg("⚠️ Activity log entry not delivered")
	}
}

func validate(guildID string, amount int64) error {
	if guildID == "" {
		return domain.ErrGuildOnly
	}
	if amount <= 0 || amount > domain.MaxAmount {
		return domain.ErrInvalidAmount
	}
	return nil
}
