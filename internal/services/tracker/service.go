package tracker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/KirkDiggler/promile/internal/bac"
	"github.com/KirkDiggler/promile/internal/common/clock"
	"github.com/KirkDiggler/promile/internal/common/uuid"
	"github.com/KirkDiggler/promile/internal/leaderboard"
	"github.com/KirkDiggler/promile/internal/models"
	guildRepo "github.com/KirkDiggler/promile/internal/repositories/guild"
	"github.com/KirkDiggler/promile/internal/substance"
	"github.com/KirkDiggler/promile/internal/tally"
	"github.com/rs/zerolog"
)

// service implements the Service interface.
//
// Lock order is locksMu, then a guild lock, then storeMu. locksMu and storeMu
// are only ever held briefly, except by Load which takes every guild lock.
type service struct {
	repo          guildRepo.Repository
	clock         clock.Clock
	uuidGenerator uuid.UUID
	logger        zerolog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.RWMutex

	storeMu sync.RWMutex
	store   *models.Store

	// saveMu keeps snapshots reaching the repository in the order taken
	saveMu sync.Mutex
}

// New creates a new tracker service with an empty store. Call Load to read
// the persisted one.
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Repository == nil {
		return nil, ErrNilRepository
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	return &service{
		repo:          cfg.Repository,
		clock:         cfg.Clock,
		uuidGenerator: cfg.UUIDGenerator,
		logger:        cfg.Logger.With().Str("component", "tracker").Logger(),
		locks:         make(map[string]*sync.RWMutex),
		store:         models.NewStore(),
	}, nil
}

func (s *service) guildLock(guildID string) *sync.RWMutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[guildID]
	if !ok {
		lock = &sync.RWMutex{}
		s.locks[guildID] = lock
	}
	return lock
}

// guildState must be called with the guild lock held. With create unset it
// returns nil for unknown guilds.
func (s *service) guildState(guildID string, create bool) *models.GuildState {
	s.storeMu.RLock()
	state := s.store.Guilds[guildID]
	s.storeMu.RUnlock()
	if state != nil || !create {
		return state
	}

	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	if state = s.store.Guilds[guildID]; state == nil {
		state = models.NewGuildState()
		s.store.Guilds[guildID] = state
	}
	return state
}

// writeGuild runs fn with the guild's write lock held
func (s *service) writeGuild(guildID string, fn func(state *models.GuildState) error) error {
	lock := s.guildLock(guildID)
	lock.Lock()
	defer lock.Unlock()

	return fn(s.guildState(guildID, true))
}

// readGuild runs fn with the guild's read lock held. state is nil for
// unknown guilds.
func (s *service) readGuild(guildID string, fn func(state *models.GuildState) error) error {
	lock := s.guildLock(guildID)
	lock.RLock()
	defer lock.RUnlock()

	return fn(s.guildState(guildID, false))
}

func userOf(state *models.GuildState, userID string) *models.UserRecord {
	if state == nil {
		return nil
	}
	return state.Users[userID]
}

// getOrCreateUser must be called with the guild's write lock held
func getOrCreateUser(state *models.GuildState, userID, displayName string) *models.UserRecord {
	user, ok := state.Users[userID]
	if !ok {
		user = models.NewUserRecord(displayName)
		state.Users[userID] = user
	}
	if user.DisplayName == "" && displayName != "" {
		user.DisplayName = displayName
	}
	return user
}

func validateIDs(guildID, userID string) error {
	if guildID == "" {
		return ErrMissingGuildID
	}
	if userID == "" {
		return ErrMissingUserID
	}
	return nil
}

// persist saves after a mutation. A failed save keeps the in-memory change;
// the next periodic save writes it.
func (s *service) persist(ctx context.Context, op string) {
	if err := s.Save(ctx); err != nil {
		s.logger.Error().Err(err).Str("operation", op).Msg("failed to persist store, change kept in memory")
	}
}

// Load replaces the in-memory store with the persisted one
func (s *service) Load(ctx context.Context) (*LoadOutput, error) {
	output, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	for _, lock := range s.locks {
		lock.Lock()
	}
	s.storeMu.Lock()
	s.store = output.Store
	guilds := len(output.Store.Guilds)
	s.storeMu.Unlock()
	for _, lock := range s.locks {
		lock.Unlock()
	}

	if output.Recovered {
		s.logger.Error().Msg("persisted store was unreadable and has been reset")
	}
	s.logger.Info().Int("guilds", guilds).Bool("created", output.Created).Msg("store loaded")

	return &LoadOutput{
		Guilds:    guilds,
		Created:   output.Created,
		Recovered: output.Recovered,
	}, nil
}

// snapshot deep-copies the store, one guild at a time under its read lock
func (s *service) snapshot() *models.Store {
	snapshot := models.NewStore()
	for _, guildID := range s.guildIDs() {
		_ = s.readGuild(guildID, func(state *models.GuildState) error {
			if state != nil {
				snapshot.Guilds[guildID] = state.Clone()
			}
			return nil
		})
	}
	return snapshot
}

func (s *service) guildIDs() []string {
	s.storeMu.RLock()
	defer s.storeMu.RUnlock()

	ids := make([]string, 0, len(s.store.Guilds))
	for guildID := range s.store.Guilds {
		ids = append(ids, guildID)
	}
	sort.Strings(ids)
	return ids
}

// Save persists the whole store
func (s *service) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := s.repo.Save(ctx, &guildRepo.SaveInput{Store: s.snapshot()}); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// RecordConsumption records one or more doses of a substance for a user
func (s *service) RecordConsumption(ctx context.Context, input *RecordConsumptionInput) (*RecordConsumptionOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	kind, err := substance.Parse(input.Substance)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSubstance, input.Substance)
	}

	if input.Dose < 0 || math.IsNaN(input.Dose) || math.IsInf(input.Dose, 0) {
		return nil, ErrNegativeDose
	}

	now := s.clock.Now()
	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = now
	}
	if timestamp.After(now) {
		return nil, ErrFutureTimestamp
	}
	timestamp = timestamp.UTC()

	count := input.Count
	if count < 1 {
		count = 1
	}
	if count > MaxDosesPerRecord {
		count = MaxDosesPerRecord
	}

	output := &RecordConsumptionOutput{Kind: kind}
	err = s.writeGuild(input.GuildID, func(state *models.GuildState) error {
		user := getOrCreateUser(state, input.UserID, input.DisplayName)
		s.pruneUser(input.GuildID, input.UserID, user, now)

		for i := 0; i < count; i++ {
			event := models.ConsumptionEvent{
				ID:        s.uuidGenerator.NewUUID(),
				Dose:      input.Dose,
				Timestamp: timestamp,
			}
			tally.RecordEvent(user, kind, event)
			output.Events = append(output.Events, event)
		}

		output.Metric = bac.Metric(user, now)
		output.MonthlyCount = user.MonthlyUsage[tally.MonthKey(timestamp)][kind]
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("guild_id", input.GuildID).
		Str("user_id", input.UserID).
		Str("kind", kind.String()).
		Int("events", count).
		Float64("metric", output.Metric).
		Msg("consumption recorded")

	s.persist(ctx, "record_consumption")
	return output, nil
}

// pruneUser must be called with the guild's write lock held
func (s *service) pruneUser(guildID, userID string, user *models.UserRecord, now time.Time) bac.PruneResult {
	result := bac.Prune(user, now)
	if result.Malformed > 0 {
		s.logger.Warn().
			Str("guild_id", guildID).
			Str("user_id", userID).
			Int("events", result.Malformed).
			Msg("dropped events with unreadable timestamps")
	}
	return result
}

// GetMetric returns a user's current intoxication metric
func (s *service) GetMetric(ctx context.Context, input *GetMetricInput) (*GetMetricOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	output := &GetMetricOutput{}
	now := s.clock.Now()
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		user := userOf(state, input.UserID)
		if user == nil {
			return nil
		}
		output.Found = true
		output.Metric = bac.Metric(user, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

func (s *service) monthOrCurrent(month string) string {
	if month == "" {
		return tally.MonthKey(s.clock.Now())
	}
	return month
}

// GetMonthlyCounts returns a user's occurrence counts for a month
func (s *service) GetMonthlyCounts(ctx context.Context, input *GetMonthlyCountsInput) (*GetMonthlyCountsOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	output := &GetMonthlyCountsOutput{Month: s.monthOrCurrent(input.Month)}
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		user := userOf(state, input.UserID)
		output.Found = user != nil
		output.Counts = tally.MonthlyCounts(user, output.Month)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// GetStatus returns everything shown on a user's status card
func (s *service) GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var output *GetStatusOutput
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		user := userOf(state, input.UserID)
		if user == nil {
			return ErrUserNotFound
		}

		month := tally.MonthKey(now)
		active := 0
		for kind, events := range user.Ledger {
			for _, event := range events {
				if !event.Malformed() && !bac.Expired(kind, event, user.WeightKg, now) {
					active++
				}
			}
		}

		output = &GetStatusOutput{
			UserID:       input.UserID,
			DisplayName:  user.DisplayName,
			Metric:       bac.Metric(user, now),
			Month:        month,
			Counts:       tally.MonthlyCounts(user, month),
			WeightKg:     user.WeightKg,
			DisplayMode:  user.DisplayMode,
			ActiveEvents: active,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RankConsumption returns the monthly consumption leaderboard of a guild
func (s *service) RankConsumption(ctx context.Context, input *RankConsumptionInput) (*RankConsumptionOutput, error) {
	if input.GuildID == "" {
		return nil, ErrMissingGuildID
	}

	output := &RankConsumptionOutput{Month: s.monthOrCurrent(input.Month)}
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		if state == nil {
			output.Entries = []models.ConsumptionEntry{}
			return nil
		}
		output.Entries = leaderboard.RankConsumption(state.Users, output.Month, input.Resolver)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// RankIntoxication returns the current intoxication leaderboard of a guild
func (s *service) RankIntoxication(ctx context.Context, input *RankIntoxicationInput) (*RankIntoxicationOutput, error) {
	if input.GuildID == "" {
		return nil, ErrMissingGuildID
	}

	output := &RankIntoxicationOutput{At: s.clock.Now()}
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		if state == nil {
			output.Entries = []models.IntoxicationEntry{}
			return nil
		}
		output.Entries = leaderboard.RankIntoxication(state.Users, output.At, input.Resolver)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SetWeight changes the body weight used for a user's metric
func (s *service) SetWeight(ctx context.Context, input *SetWeightInput) (*SetWeightOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	if input.WeightKg <= 0 || math.IsNaN(input.WeightKg) || math.IsInf(input.WeightKg, 0) {
		return nil, ErrInvalidWeight
	}

	output := &SetWeightOutput{WeightKg: input.WeightKg}
	err := s.writeGuild(input.GuildID, func(state *models.GuildState) error {
		user := getOrCreateUser(state, input.UserID, input.DisplayName)
		output.PreviousWeightKg = user.WeightKg
		user.WeightKg = input.WeightKg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(ctx, "set_weight")
	return output, nil
}

// SetDisplayMode changes how a user's status is rendered
func (s *service) SetDisplayMode(ctx context.Context, input *SetDisplayModeInput) (*SetDisplayModeOutput, error) {
	if err := validateIDs(input.GuildID, input.UserID); err != nil {
		return nil, err
	}

	if !input.Mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDisplayMode, input.Mode)
	}

	err := s.writeGuild(input.GuildID, func(state *models.GuildState) error {
		getOrCreateUser(state, input.UserID, input.DisplayName).DisplayMode = input.Mode
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(ctx, "set_display_mode")
	return &SetDisplayModeOutput{Mode: input.Mode}, nil
}

// ResetUser removes a user's record entirely
func (s *service) ResetUser(ctx context.Context, input *ResetUserInput) (*ResetUserOutput, error) {
	if err := validateIDs(input.GuildID, input.ActorID); err != nil {
		return nil, err
	}

	target := input.TargetUserID
	if target == "" {
		target = input.ActorID
	}
	if target != input.ActorID && !input.Privileged {
		return nil, ErrNotPrivileged
	}

	output := &ResetUserOutput{TargetUserID: target}
	err := s.writeGuild(input.GuildID, func(state *models.GuildState) error {
		if _, ok := state.Users[target]; ok {
			delete(state.Users, target)
			output.Removed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if output.Removed {
		s.logger.Info().
			Str("guild_id", input.GuildID).
			Str("actor_id", input.ActorID).
			Str("user_id", target).
			Msg("user reset")
		s.persist(ctx, "reset_user")
	}
	return output, nil
}

// GetSettings returns a copy of a guild's settings
func (s *service) GetSettings(ctx context.Context, input *GetSettingsInput) (*GetSettingsOutput, error) {
	if input.GuildID == "" {
		return nil, ErrMissingGuildID
	}

	output := &GetSettingsOutput{Settings: make(models.GuildSettings)}
	err := s.readGuild(input.GuildID, func(state *models.GuildState) error {
		if state == nil {
			return nil
		}
		for key, value := range state.Settings {
			output.Settings[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// UpdateSettings sets and deletes guild settings
func (s *service) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*UpdateSettingsOutput, error) {
	if input.GuildID == "" {
		return nil, ErrMissingGuildID
	}

	output := &UpdateSettingsOutput{Settings: make(models.GuildSettings)}
	err := s.writeGuild(input.GuildID, func(state *models.GuildState) error {
		for key, value := range input.Set {
			state.Settings[key] = value
		}
		for _, key := range input.Delete {
			delete(state.Settings, key)
		}
		for key, value := range state.Settings {
			output.Settings[key] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.persist(ctx, "update_settings")
	return output, nil
}

// ListGuilds returns the IDs of every known guild, sorted
func (s *service) ListGuilds(ctx context.Context) ([]string, error) {
	return s.guildIDs(), nil
}

// Refresh prunes every ledger and persists the store when anything changed
func (s *service) Refresh(ctx context.Context) (*RefreshOutput, error) {
	now := s.clock.Now()
	output := &RefreshOutput{ChangedGuilds: []string{}}

	for _, guildID := range s.guildIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		changed := false
		_ = s.writeGuild(guildID, func(state *models.GuildState) error {
			for userID, user := range state.Users {
				if !user.HasLedgerEvents() {
					continue
				}
				result := s.pruneUser(guildID, userID, user, now)
				output.Removed += result.Removed
				output.Malformed += result.Malformed
				if result.Total() > 0 {
					changed = true
				}
			}
			return nil
		})
		if changed {
			output.ChangedGuilds = append(output.ChangedGuilds, guildID)
		}
	}

	if len(output.ChangedGuilds) == 0 {
		return output, nil
	}

	if err := s.Save(ctx); err != nil {
		return nil, err
	}
	output.Saved = true

	s.logger.Debug().
		Int("removed", output.Removed).
		Int("malformed", output.Malformed).
		Strs("guilds", output.ChangedGuilds).
		Msg("ledgers pruned")

	return output, nil
}
