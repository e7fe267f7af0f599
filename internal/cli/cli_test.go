package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/KirkDiggler/promile/internal/config"
	"github.com/KirkDiggler/promile/internal/models"
	"github.com/KirkDiggler/promile/internal/services/tracker"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
	ctx context.Context
	dir string
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.ctx = context.Background()
	s.dir = s.T().TempDir()
}

func (s *CLITestSuite) fileConfig() *config.Config {
	return &config.Config{
		StoreBackend: config.BackendFile,
		DataFile:     filepath.Join(s.dir, "data.json"),
	}
}

func (s *CLITestSuite) TestOpenRepositoryBackends() {
	mr := miniredis.RunT(s.T())

	configs := []*config.Config{
		s.fileConfig(),
		{StoreBackend: config.BackendSQLite, SQLitePath: filepath.Join(s.dir, "promile.db")},
		{StoreBackend: config.BackendRedis, RedisAddr: mr.Addr(), RedisKey: "promile:test"},
	}

	for _, cfg := range configs {
		repo, closeRepo, err := openRepository(cfg, zerolog.Nop())
		s.Require().NoError(err, cfg.StoreBackend)

		loaded, err := repo.Load(s.ctx)
		s.Require().NoError(err, cfg.StoreBackend)
		s.True(loaded.Created, cfg.StoreBackend)
		closeRepo()
	}
}

func (s *CLITestSuite) TestOpenRepositoryUnknownBackend() {
	_, _, err := openRepository(&config.Config{StoreBackend: "etcd"}, zerolog.Nop())
	s.Error(err)
}

func (s *CLITestSuite) TestOpenTrackerPersistsAcrossRuns() {
	cfg := s.fileConfig()

	first, closeFirst, err := openTracker(s.ctx, cfg, zerolog.Nop())
	s.Require().NoError(err)
	_, err = first.RecordConsumption(s.ctx, &tracker.RecordConsumptionInput{
		GuildID:     "g1",
		UserID:      "u1",
		DisplayName: "Ala",
		Substance:   "beer",
		Dose:        1,
		Count:       2,
	})
	s.Require().NoError(err)
	closeFirst()

	second, closeSecond, err := openTracker(s.ctx, cfg, zerolog.Nop())
	s.Require().NoError(err)
	defer closeSecond()

	counts, err := second.GetMonthlyCounts(s.ctx, &tracker.GetMonthlyCountsInput{GuildID: "g1", UserID: "u1"})
	s.Require().NoError(err)
	s.Equal(2, counts.Counts[models.SubstanceBeer])

	var out bytes.Buffer
	s.Require().NoError(printConsumption(s.ctx, &out, second, "g1", ""))
	s.Contains(out.String(), "Ala")
	s.Contains(out.String(), "beer=2")

	out.Reset()
	s.Require().NoError(printIntoxication(s.ctx, &out, second, "g1"))
	s.Contains(out.String(), "Ala")
	s.Contains(out.String(), "‰")

	out.Reset()
	s.Require().NoError(printConsumption(s.ctx, &out, second, "empty-guild", "2020-01"))
	s.Contains(out.String(), "(empty)")
}

func (s *CLITestSuite) TestVersionCommand() {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	s.Contains(out.String(), "promile dev")
}
