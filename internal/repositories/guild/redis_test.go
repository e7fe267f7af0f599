package guild

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type RedisRepositoryTestSuite struct {
	documentSuite
	mr     *miniredis.Miniredis
	client *redis.Client
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	// Create a new miniredis server for each test
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	// Create a Redis client connected to the miniredis server
	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	// Create the repository
	repo, err := NewRedis(&RedisConfig{
		RedisClient: s.client,
		Key:         "test:store",
		Logger:      zerolog.Nop(),
	})
	s.Require().NoError(err)
	s.repo = repo

	s.testNow = time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	s.readRaw = func() []byte {
		if !s.mr.Exists("test:store") {
			return nil
		}
		data, err := s.mr.Get("test:store")
		s.Require().NoError(err)
		return []byte(data)
	}
	s.writeRaw = func(data []byte) {
		s.Require().NoError(s.mr.Set("test:store", string(data)))
	}
	s.readQuarantine = func() []byte {
		data, err := s.mr.Get("test:store:corrupt")
		s.Require().NoError(err)
		return []byte(data)
	}
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestNewRedisValidatesConfig() {
	_, err := NewRedis(nil)
	s.Error(err)

	_, err = NewRedis(&RedisConfig{})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestNewRedisFailsWhenUnreachable() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	_, err = NewRedis(&RedisConfig{RedisClient: client})
	s.Error(err)
}

func (s *RedisRepositoryTestSuite) TestDefaultKey() {
	repo, err := NewRedis(&RedisConfig{RedisClient: s.client, Logger: zerolog.Nop()})
	s.Require().NoError(err)

	_, err = repo.Load(context.Background())
	s.Require().NoError(err)
	s.True(s.mr.Exists(DefaultRedisKey))
}
