package guild

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/substance"
)

// ErrCorruptStore is returned when a persisted document cannot be decoded
var ErrCorruptStore = errors.New("guild store document is corrupt")

// DecodeReport describes what Decode changed while reading a document
type DecodeReport struct {
	// Upgraded is set when the document used the legacy unversioned layout
	Upgraded bool

	// DroppedKinds lists unknown substance kinds that were discarded
	DroppedKinds []string

	// DroppedEvents counts events discarded for a negative or non-finite dose
	DroppedEvents int
}

// Clean reports whether decoding changed nothing
func (r DecodeReport) Clean() bool {
	return !r.Upgraded && len(r.DroppedKinds) == 0 && r.DroppedEvents == 0
}

// Encode serialises the store. The output is deterministic: map keys are
// sorted and ledger order is preserved.
func Encode(store *models.Store) ([]byte, error) {
	if store == nil {
		store = models.NewStore()
	}

	doc := struct {
		Version int                           `json:"version"`
		Guilds  map[string]*models.GuildState `json:"guilds"`
	}{
		Version: models.StoreVersion,
		Guilds:  store.Guilds,
	}
	if doc.Guilds == nil {
		doc.Guilds = make(map[string]*models.GuildState)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal store: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted document, upgrading the legacy layout and
// normalising missing or invalid fields to their defaults.
func Decode(data []byte) (*models.Store, DecodeReport, error) {
	var report DecodeReport

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if top == nil {
		return nil, report, fmt.Errorf("%w: document is null", ErrCorruptStore)
	}

	var store *models.Store
	if _, versioned := top["version"]; versioned {
		var doc models.Store
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		if doc.Version < 1 || doc.Version > models.StoreVersion {
			return nil, report, fmt.Errorf("%w: unsupported version %d", ErrCorruptStore, doc.Version)
		}
		store = &doc
	} else {
		upgraded, err := decodeLegacy(top)
		if err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrCorruptStore, err)
		}
		store = upgraded
		report.Upgraded = true
	}

	normalizeStore(store, &report)
	return store, report, nil
}

// legacyUser is the user shape of unversioned documents
type legacyUser struct {
	OriginalNick string                               `json:"original_nick"`
	Consumptions map[string][]models.ConsumptionEvent `json:"consumptions"`
	MonthlyUsage map[string]map[string]int            `json:"monthly_usage"`
	Weight       float64                              `json:"weight"`
	DisplayMode  string                               `json:"display_mode"`
}

type legacyGuild struct {
	Settings map[string]json.RawMessage `json:"settings"`
	Users    map[string]*legacyUser     `json:"users"`
}

// legacyModes maps legacy display mode names
var legacyModes = map[string]models.DisplayMode{
	"promile": models.DisplayModeMetric,
	"emoji":   models.DisplayModeIcons,
}

func decodeLegacy(top map[string]json.RawMessage) (*models.Store, error) {
	store := models.NewStore()
	for guildID, raw := range top {
		// Unversioned files were seeded with an empty "guilds" object
		if guildID == "guilds" {
			continue
		}

		var legacy legacyGuild
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("guild %s: %w", guildID, err)
		}

		state := models.NewGuildState()
		for key, value := range legacy.Settings {
			if text, ok := legacySettingString(value); ok {
				state.Settings[key] = text
			}
		}

		for userID, lu := range legacy.Users {
			if lu == nil {
				continue
			}
			user := &models.UserRecord{
				DisplayName:  lu.OriginalNick,
				Ledger:       make(map[models.SubstanceKind][]models.ConsumptionEvent, len(lu.Consumptions)),
				MonthlyUsage: make(map[string]map[models.SubstanceKind]int, len(lu.MonthlyUsage)),
				WeightKg:     lu.Weight,
				DisplayMode:  models.DisplayMode(lu.DisplayMode),
			}
			if mode, ok := legacyModes[lu.DisplayMode]; ok {
				user.DisplayMode = mode
			}
			for kind, events := range lu.Consumptions {
				user.Ledger[models.SubstanceKind(kind)] = events
			}
			for month, counts := range lu.MonthlyUsage {
				converted := make(map[models.SubstanceKind]int, len(counts))
				for kind, count := range counts {
					converted[models.SubstanceKind(kind)] = count
				}
				user.MonthlyUsage[month] = converted
			}
			state.Users[userID] = user
		}

		store.Guilds[guildID] = state
	}
	return store, nil
}

// legacySettingString renders a legacy setting value. Discord IDs were
// stored as JSON numbers wider than a float64 mantissa, so number literals
// are kept exactly as written. Null values are skipped.
func legacySettingString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err == nil {
			return text, true
		}
	}
	return string(trimmed), true
}

func normalizeStore(store *models.Store, report *DecodeReport) {
	store.Version = models.StoreVersion
	if store.Guilds == nil {
		store.Guilds = make(map[string]*models.GuildState)
	}

	dropped := make(map[string]struct{})
	for guildID, state := range store.Guilds {
		if state == nil {
			state = models.NewGuildState()
			store.Guilds[guildID] = state
		}
		if state.Settings == nil {
			state.Settings = make(models.GuildSettings)
		}
		if state.Users == nil {
			state.Users = make(map[string]*models.UserRecord)
		}

		for userID, user := range state.Users {
			if user == nil {
				delete(state.Users, userID)
				continue
			}
			normalizeUser(user, report, dropped)
		}
	}

	for kind := range dropped {
		report.DroppedKinds = append(report.DroppedKinds, kind)
	}
	sort.Strings(report.DroppedKinds)
}

func normalizeUser(user *models.UserRecord, report *DecodeReport, dropped map[string]struct{}) {
	if user.WeightKg <= 0 || math.IsNaN(user.WeightKg) || math.IsInf(user.WeightKg, 0) {
		user.WeightKg = models.DefaultWeightKg
	}
	if !user.DisplayMode.IsValid() {
		user.DisplayMode = models.DisplayModeMetric
	}

	ledger := make(map[models.SubstanceKind][]models.ConsumptionEvent, len(user.Ledger))
	for rawKind, events := range user.Ledger {
		kind, err := substance.Parse(string(rawKind))
		if err != nil {
			dropped[string(rawKind)] = struct{}{}
			continue
		}
		for _, event := range events {
			if event.Dose < 0 || math.IsNaN(event.Dose) || math.IsInf(event.Dose, 0) {
				report.DroppedEvents++
				continue
			}
			ledger[kind] = append(ledger[kind], event)
		}
	}
	for kind, events := range ledger {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Timestamp.Before(events[j].Timestamp)
		})
		if len(events) == 0 {
			delete(ledger, kind)
		}
	}
	user.Ledger = ledger

	usage := make(map[string]map[models.SubstanceKind]int, len(user.MonthlyUsage))
	for month, counts := range user.MonthlyUsage {
		for rawKind, count := range counts {
			kind, err := substance.Parse(string(rawKind))
			if err != nil {
				dropped[string(rawKind)] = struct{}{}
				continue
			}
			if count <= 0 {
				continue
			}
			if usage[month] == nil {
				usage[month] = make(map[models.SubstanceKind]int)
			}
			usage[month][kind] += count
		}
	}
	user.MonthlyUsage = usage
}
