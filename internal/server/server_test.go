package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/KirkDiggler/promile/internal/common/clock/mocks"
	"github.com/KirkDiggler/promile/internal/common/uuid"
	guildRepo "github.com/KirkDiggler/promile/internal/repositories/guild"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ServerTestSuite struct {
	suite.Suite
	mockCtrl *gomock.Controller
	tracker  tracker.Service
	server   *Server
	ctx      context.Context
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.ctx = context.Background()

	mockClock := mocks.NewMockClock(s.mockCtrl)
	mockClock.EXPECT().Now().Return(time.Date(2025, 4, 19, 20, 0, 0, 0, time.UTC)).AnyTimes()

	repo, err := guildRepo.NewFile(&guildRepo.FileConfig{
		Path: filepath.Join(s.T().TempDir(), "store.json"),
	})
	s.Require().NoError(err)

	s.tracker, err = tracker.New(&tracker.Config{
		Repository:    repo,
		Clock:         mockClock,
		UUIDGenerator: uuid.New(),
		Logger:        zerolog.Nop(),
	})
	s.Require().NoError(err)

	s.server, err = New(&Config{Tracker: s.tracker, Version: "test-version", Logger: zerolog.Nop()})
	s.Require().NoError(err)
}

func (s *ServerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *ServerTestSuite) get(path string) (int, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.server.ServeHTTP(w, req)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("application/json", w.Header().Get("Content-Type"))
	return w.Code, body
}

func (s *ServerTestSuite) record(userID, kind string, count int) {
	_, err := s.tracker.RecordConsumption(s.ctx, &tracker.RecordConsumptionInput{
		GuildID:     "g1",
		UserID:      userID,
		DisplayName: userID,
		Substance:   kind,
		Dose:        1,
		Count:       count,
	})
	s.Require().NoError(err)
}

func (s *ServerTestSuite) TestNewValidation() {
	_, err := New(nil)
	s.Error(err)

	_, err = New(&Config{})
	s.Error(err)
}

func (s *ServerTestSuite) TestHealth() {
	s.record("a", "beer", 1)

	code, body := s.get("/api/health")
	s.Equal(http.StatusOK, code)
	s.Equal("ok", body["status"])
	s.Equal("test-version", body["version"])
	s.Equal(float64(1), body["guilds"])
}

func (s *ServerTestSuite) TestConsumptionLeaderboard() {
	s.record("a", "whiskey", 1)
	s.record("a", "vodka", 1)
	s.record("b", "whiskey", 1)

	code, body := s.get("/api/guilds/g1/leaderboard/consumption")
	s.Equal(http.StatusOK, code)
	s.Equal("2025-04", body["month"])

	entries := body["entries"].([]any)
	s.Require().Len(entries, 2)
	first := entries[0].(map[string]any)
	s.Equal("a", first["user_id"])
	s.Equal(float64(1), first["rank"])
	s.InDelta(47.34, first["ethanol_grams"], 1e-9)
}

func (s *ServerTestSuite) TestConsumptionMonthValidation() {
	code, body := s.get("/api/guilds/g1/leaderboard/consumption?month=2025-13")
	s.Equal(http.StatusBadRequest, code)
	s.NotEmpty(body["error"])

	code, body = s.get("/api/guilds/g1/leaderboard/consumption?month=2025-03")
	s.Equal(http.StatusOK, code)
	s.Empty(body["entries"])
}

func (s *ServerTestSuite) TestIntoxicationLeaderboard() {
	s.record("a", "beer", 2)
	s.record("b", "smokable", 1)

	code, body := s.get("/api/guilds/g1/leaderboard/intoxication")
	s.Equal(http.StatusOK, code)
	s.Equal("2025-04-19T20:00:00Z", body["at"])

	entries := body["entries"].([]any)
	s.Require().Len(entries, 1)
	s.Equal("a", entries[0].(map[string]any)["user_id"])
}

func (s *ServerTestSuite) TestUserStatus() {
	s.record("a", "beer", 2)

	code, body := s.get("/api/guilds/g1/users/a")
	s.Equal(http.StatusOK, code)
	s.Equal("a", body["user_id"])
	s.Equal(float64(2), body["active_events"])
	s.Equal(float64(2), body["counts"].(map[string]any)["beer"])

	code, body = s.get("/api/guilds/g1/users/nobody")
	s.Equal(http.StatusNotFound, code)
	s.NotEmpty(body["error"])
}
