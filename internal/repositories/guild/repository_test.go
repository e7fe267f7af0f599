package guild

import (
	"context"
	"time"

	"github.com/KirkDiggler/promile/internal/models"
	"github.com/stretchr/testify/suite"
)

// documentSuite holds the behaviour every backend has to share. Backend
// suites embed it and set repo and readRaw in SetupTest.
type documentSuite struct {
	suite.Suite
	repo    *DocumentRepository
	testNow time.Time

	// readRaw returns the persisted bytes, or nil when nothing is stored
	readRaw func() []byte

	// writeRaw stores bytes directly, bypassing the repository
	writeRaw func(data []byte)

	// readQuarantine returns the bytes moved aside by a recovery
	readQuarantine func() []byte
}

func (s *documentSuite) TestLoadCreatesMissingStore() {
	s.Nil(s.readRaw())

	output, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.True(output.Created)
	s.False(output.Recovered)
	s.Empty(output.Store.Guilds)

	s.JSONEq(`{"version":1,"guilds":{}}`, string(s.readRaw()))
}

func (s *documentSuite) TestSaveThenLoad() {
	store := models.NewStore()
	state := models.NewGuildState()
	user := models.NewUserRecord("Ala")
	user.Ledger[models.SubstanceWine] = []models.ConsumptionEvent{{ID: "e1", Dose: 1, Timestamp: s.testNow}}
	user.MonthlyUsage["2025-04"] = map[models.SubstanceKind]int{models.SubstanceWine: 1}
	state.Users["42"] = user
	store.Guilds["777"] = state

	err := s.repo.Save(context.Background(), &SaveInput{Store: store})
	s.Require().NoError(err)

	output, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.False(output.Created)
	s.False(output.Recovered)

	loaded := output.Store.Guilds["777"].Users["42"]
	s.Require().NotNil(loaded)
	s.Equal("Ala", loaded.DisplayName)
	s.Len(loaded.Ledger[models.SubstanceWine], 1)
	s.Equal(1, loaded.MonthlyUsage["2025-04"][models.SubstanceWine])
}

func (s *documentSuite) TestSaveIsIdempotent() {
	s.writeRaw([]byte(`{"version":1,"guilds":{"g":{"settings":{"a":"b"},"users":{}}}}`))

	first, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Save(context.Background(), &SaveInput{Store: first.Store}))
	saved := s.readRaw()

	second, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Require().NoError(s.repo.Save(context.Background(), &SaveInput{Store: second.Store}))

	s.Equal(string(saved), string(s.readRaw()))
}

func (s *documentSuite) TestLoadRecoversCorruptStore() {
	s.writeRaw([]byte(`{"version":1,"guilds":`))

	output, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.True(output.Recovered)
	s.Empty(output.Store.Guilds)

	s.JSONEq(`{"version":1,"guilds":{}}`, string(s.readRaw()))
	s.Equal(`{"version":1,"guilds":`, string(s.readQuarantine()))
}

func (s *documentSuite) TestLoadUpgradesLegacyStore() {
	s.writeRaw([]byte(`{"guilds":{},"g":{"settings":{},"users":{"u":{"original_nick":"Bob","consumptions":{},"monthly_usage":{},"weight":70,"display_mode":"promile"}}}}`))

	output, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.True(output.Report.Upgraded)
	s.Equal(70.0, output.Store.Guilds["g"].Users["u"].WeightKg)
}

func (s *documentSuite) TestSaveRejectsNilInput() {
	s.Error(s.repo.Save(context.Background(), nil))
	s.Error(s.repo.Save(context.Background(), &SaveInput{}))
}
