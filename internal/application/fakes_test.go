package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rpbot/internal/domain"
	"rpbot/internal/domain/entities"
)

type memoryRepo struct {
	mu   sync.Mutex
	rows map[[2]string]*entities.Balance
	err  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: map[[2]string]*entities.Balance{}}
}

func (r *memoryRepo) AddWeekly(_ context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return entities.Balance{}, r.err
	}
	key := [2]string{guildID, userID}
	b, ok := r.rows[key]
	if !ok {
		b = &entities.Balance{GuildID: guildID, UserID: userID}
		r.rows[key] = b
	}
	b.WeeklyRP += amount
	return *b, nil
}

func (r *memoryRepo) RevokeWeekly(_ context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[[2]string{guildID, userID}]
	if !ok {
		return entities.Balance{}, domain.ErrBalanceNotFound
	}
	b.WeeklyRP = max(b.WeeklyRP-amount, 0)
	return *b, nil
}

func (r *memoryRepo) RevokeHistorical(_ context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[[2]string{guildID, userID}]
	if !ok {
		return entities.Balance{}, domain.ErrHistoricalNotFound
	}
	b.HistoricalRP = max(b.HistoricalRP-amount, 0)
	return *b, nil
}

func (r *memoryRepo) Find(_ context.Context, guildID, userID string) (*entities.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	b, ok := r.rows[[2]string{guildID, userID}]
	if !ok {
		return nil, domain.ErrBalanceNotFound
	}
	out := *b
	return &out, nil
}

func (r *memoryRepo) top(guildID string, limit int, value func(entities.Balance) int64) []entities.Balance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entities.Balance
	for _, b := range r.rows {
		if b.GuildID == guildID && value(*b) > 0 {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if value(out[i]) != value(out[j]) {
			return value(out[i]) > value(out[j])
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memoryRepo) TopWeekly(_ context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return r.top(guildID, limit, func(b entities.Balance) int64 { return b.WeeklyRP }), nil
}

func (r *memoryRepo) TopHistorical(_ context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return r.top(guildID, limit, func(b entities.Balance) int64 { return b.HistoricalRP }), nil
}

func (r *memoryRepo) Rollover(_ context.Context, guildID string, at time.Time) ([]entities.Rollover, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	byGuild := map[string]*entities.Rollover{}
	var order []string
	for _, b := range r.rows {
		if b.WeeklyRP == 0 || (guildID != "" && b.GuildID != guildID) {
			continue
		}
		ro, ok := byGuild[b.GuildID]
		if !ok {
			ro = &entities.Rollover{ID: uuid.New(), GuildID: b.GuildID, ExecutedAt: at}
			byGuild[b.GuildID] = ro
			order = append(order, b.GuildID)
		}
		ro.UsersArchived++
		ro.ArchivedRP += b.WeeklyRP
		b.HistoricalRP += b.WeeklyRP
		b.WeeklyRP = 0
	}
	sort.Strings(order)
	out := make([]entities.Rollover, 0, len(order))
	for _, g := range order {
		out = append(out, *byGuild[g])
	}
	return out, nil
}

type recordingActivity struct {
	mutations []entities.Mutation
	reports   [][]entities.Rollover
	triggers  []string
	err       error
}

func (a *recordingActivity) LogMutation(_ context.Context, m entities.Mutation) error {
	a.mutations = append(a.mutations, m)
	return a.err
}

func (a *recordingActivity) LogRollover(_ context.Context, trigger string, rollovers []entities.Rollover) error {
	a.triggers = append(a.triggers, trigger)
	a.reports = append(a.reports, rollovers)
	return a.err
}

type countingMetrics struct {
	mutations map[string]int
	rollovers map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{mutations: map[string]int{}, rollovers: map[string]int{}}
}

func (m *countingMetrics) LedgerMutation(kind string) { m.mutations[kind]++ }

func (m *countingMetrics) RolloverCompleted(trigger string, _ []entities.Rollover) {
	m.rollovers[trigger]++
}

var errStore = errors.New("store unavailable")
