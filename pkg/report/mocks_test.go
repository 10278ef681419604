package report

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockRedis is a mock implementation of txPipeliner. TxPipelined runs the
// callback against Pipe and then returns the mocked result.
type MockRedis struct {
	mock.Mock
	Pipe *MockPipeliner
}

func (m *MockRedis) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if err := fn(m.Pipe); err != nil {
		return nil, err
	}
	args := m.Called()
	return nil, args.Error(0)
}

func (m *MockRedis) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPipeliner records the commands queued on a pipeline. Only the
// commands RedisStore issues are implemented; anything else panics on the
// nil embedded Pipeliner.
type MockPipeliner struct {
	redis.Pipeliner
	mock.Mock
}

func (m *MockPipeliner) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.Called(key, values)
	return redis.NewIntCmd(ctx)
}

func (m *MockPipeliner) RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.Called(key, values)
	return redis.NewIntCmd(ctx)
}
