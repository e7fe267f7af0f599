package models

// StoreVersion is the current persisted document version
const StoreVersion = 1

// Well-known guild settings keys written by the Discord integration
const (
	SettingDedicatedChannelID        = "dedicated_channel_id"
	SettingStatusMessageID           = "status_message_id"
	SettingConsumptionBoardChannelID = "live_leaderboard_channel_id"
	SettingConsumptionBoardMessageID = "live_leaderboard_message_id"
	SettingIntoxicationChannelID     = "bac_leaderboard_channel_id"
	SettingIntoxicationMessageID     = "bac_leaderboard_message_id"
)

// GuildSettings holds opaque handles owned by the integration layer. The
// core persists them but never interprets them.
type GuildSettings map[string]string

// GuildState is the persisted state of one guild
type GuildState struct {
	// Settings are pass-through key/value pairs
	Settings GuildSettings `json:"settings"`

	// Users maps user ID to that user's record
	Users map[string]*UserRecord `json:"users"`
}

// NewGuildState creates an empty guild
func NewGuildState() *GuildState {
	return &GuildState{
		Settings: make(GuildSettings),
		Users:    make(map[string]*UserRecord),
	}
}

// Store is the single root of persisted state
type Store struct {
	// Version is the document schema version
	Version int `json:"version"`

	// Guilds maps guild ID to guild state
	Guilds map[string]*GuildState `json:"guilds"`
}

// NewStore creates an empty store at the current version
func NewStore() *Store {
	return &Store{
		Version: StoreVersion,
		Guilds:  make(map[string]*GuildState),
	}
}

// Clone returns a deep copy of the guild
func (g *GuildState) Clone() *GuildState {
	if g == nil {
		return nil
	}

	clone := &GuildState{
		Settings: make(GuildSettings, len(g.Settings)),
		Users:    make(map[string]*UserRecord, len(g.Users)),
	}
	for key, value := range g.Settings {
		clone.Settings[key] = value
	}
	for userID, user := range g.Users {
		clone.Users[userID] = user.Clone()
	}
	return clone
}
