package discord

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/KirkDiggler/promile/internal/common/clock/mocks"
	"github.com/KirkDiggler/promile/internal/common/uuid"
	"github.com/KirkDiggler/promile/internal/leaderboard"
	guildRepo "github.com/KirkDiggler/promile/internal/repositories/guild"
	"github.com/KirkDiggler/promile/internal/services/messaging"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

// fakePoster records what would have been sent to Discord
type fakePoster struct {
	mu        sync.Mutex
	nextID    int
	messages  map[string]string
	embeds    map[string]*discordgo.MessageEmbed
	channels  map[string]string
	reactions []string
	removed   []string

	// missing makes EditEmbed report these message IDs as deleted
	missing map[string]bool
	failAll error
}

func newFakePoster() *fakePoster {
	return &fakePoster{
		messages: make(map[string]string),
		embeds:   make(map[string]*discordgo.MessageEmbed),
		channels: make(map[string]string),
		missing:  make(map[string]bool),
	}
}

func (p *fakePoster) newID(channelID string) string {
	p.nextID++
	id := fmt.Sprintf("msg-%d", p.nextID)
	p.channels[id] = channelID
	return id
}

func (p *fakePoster) SendMessage(channelID, content string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAll != nil {
		return "", p.failAll
	}
	id := p.newID(channelID)
	p.messages[id] = content
	return id, nil
}

func (p *fakePoster) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAll != nil {
		return "", p.failAll
	}
	id := p.newID(channelID)
	p.embeds[id] = embed
	return id, nil
}

func (p *fakePoster) EditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failAll != nil {
		return p.failAll
	}
	if p.missing[messageID] {
		return ErrMessageNotFound
	}
	p.embeds[messageID] = embed
	return nil
}

func (p *fakePoster) AddReaction(channelID, messageID, emoji string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, emoji)
	return nil
}

func (p *fakePoster) RemoveReaction(channelID, messageID, emoji, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, userID+":"+emoji)
	return nil
}

func (p *fakePoster) embed(messageID string) *discordgo.MessageEmbed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.embeds[messageID]
}

// discordSuite wires a real tracker on a file store with a fake Poster
type discordSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *mocks.MockClock
	tracker   tracker.Service
	messaging messaging.Service
	poster    *fakePoster
	boards    *Boards
	ctx       context.Context
	now       time.Time
	guildID   string
}

func (s *discordSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.ctx = context.Background()
	s.now = time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC)
	s.guildID = "guild-1"
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	repo, err := guildRepo.NewFile(&guildRepo.FileConfig{
		Path:   filepath.Join(s.T().TempDir(), "store.json"),
		Logger: zerolog.Nop(),
	})
	s.Require().NoError(err)

	trackerService, err := tracker.New(&tracker.Config{
		Repository:    repo,
		Clock:         s.mockClock,
		UUIDGenerator: uuid.New(),
		Logger:        zerolog.Nop(),
	})
	s.Require().NoError(err)
	_, err = trackerService.Load(s.ctx)
	s.Require().NoError(err)
	s.tracker = trackerService

	s.messaging, err = messaging.NewService(&messaging.ServiceConfig{})
	s.Require().NoError(err)

	s.poster = newFakePoster()
	s.boards, err = NewBoards(&BoardsConfig{
		Tracker:   s.tracker,
		Messaging: s.messaging,
		Poster:    s.poster,
		Resolvers: func(guildID string) leaderboard.NameResolver {
			return func(userID string) string {
				if userID == "user-a" {
					return "Ala"
				}
				return ""
			}
		},
		Logger: zerolog.Nop(),
	})
	s.Require().NoError(err)
}

func (s *discordSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *discordSuite) record(userID, kind string, count int) {
	_, err := s.tracker.RecordConsumption(s.ctx, &tracker.RecordConsumptionInput{
		GuildID:   s.guildID,
		UserID:    userID,
		Substance: kind,
		Dose:      1,
		Count:     count,
	})
	s.Require().NoError(err)
}

func (s *discordSuite) settings() map[string]string {
	out, err := s.tracker.GetSettings(s.ctx, &tracker.GetSettingsInput{GuildID: s.guildID})
	s.Require().NoError(err)
	return out.Settings
}
