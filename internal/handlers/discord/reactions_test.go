package discord

import (
	"testing"

	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type ReactionsTestSuite struct {
	discordSuite
	reactions *Reactions
	statusID  string
}

func TestReactionsTestSuite(t *testing.T) {
	suite.Run(t, new(ReactionsTestSuite))
}

func (s *ReactionsTestSuite) SetupTest() {
	s.discordSuite.SetupTest()
	s.reactions = NewReactions(s.tracker, s.poster, zerolog.Nop())

	var err error
	s.statusID, err = s.boards.PostStatusMessage(s.ctx, s.guildID, "chan-1")
	s.Require().NoError(err)
}

func (s *ReactionsTestSuite) react(messageID, emoji string) {
	err := s.reactions.Handle(s.ctx, &reactionEvent{
		GuildID:   s.guildID,
		ChannelID: "chan-1",
		MessageID: messageID,
		UserID:    "user-a",
		UserName:  "Ala",
		Emoji:     emoji,
	})
	s.Require().NoError(err)
}

func (s *ReactionsTestSuite) counts() map[string]int {
	out, err := s.tracker.GetMonthlyCounts(s.ctx, &tracker.GetMonthlyCountsInput{GuildID: s.guildID, UserID: "user-a"})
	s.Require().NoError(err)
	counts := make(map[string]int)
	for kind, n := range out.Counts {
		counts[string(kind)] = n
	}
	return counts
}

func (s *ReactionsTestSuite) TestSubstanceEmojiRecordsDose() {
	s.react(s.statusID, "🍺")
	s.react(s.statusID, "🍺")

	s.Equal(2, s.counts()["beer"])
	s.Equal([]string{"user-a:🍺", "user-a:🍺"}, s.poster.removed)

	status, err := s.tracker.GetStatus(s.ctx, &tracker.GetStatusInput{GuildID: s.guildID, UserID: "user-a"})
	s.Require().NoError(err)
	s.Equal("Ala", status.DisplayName)
}

func (s *ReactionsTestSuite) TestResetEmojiClearsRecord() {
	s.react(s.statusID, "🍃")
	s.react(s.statusID, ResetEmoji)

	out, err := s.tracker.GetMetric(s.ctx, &tracker.GetMetricInput{GuildID: s.guildID, UserID: "user-a"})
	s.Require().NoError(err)
	s.False(out.Found)
	s.Len(s.poster.removed, 2)
}

func (s *ReactionsTestSuite) TestOtherMessagesIgnored() {
	s.react("some-other-message", "🍺")

	s.Empty(s.counts())
	s.Empty(s.poster.removed)
}

func (s *ReactionsTestSuite) TestUnknownEmojiOnlyRemoved() {
	s.react(s.statusID, "🎉")

	s.Empty(s.counts())
	s.Equal([]string{"user-a:🎉"}, s.poster.removed)
}
