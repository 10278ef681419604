package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/pkg/histogram"
	"github.com/zhengshuai-xiao/chunkshare/pkg/registry"
)

func twoClientRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.NewReader(nil)
	_, err := r.ReadFrom("client1.csv", strings.NewReader("a1,100\nb2,200\n"))
	require.NoError(t, err)
	_, err = r.ReadFrom("client2.csv", strings.NewReader("a1,100\nc3,300\n"))
	require.NoError(t, err)
	return r.Registry()
}

func sharingOf(t *testing.T, reg *registry.Registry) *histogram.Histogram {
	t.Helper()
	h, err := histogram.Sharing(reg, reg.Manifests())
	require.NoError(t, err)
	return h
}

func TestWriteHistogram_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, sharingOf(t, twoClientRegistry(t)), FormatCSV))
	assert.Equal(t, "k,count\n1,2\n2,1\n", buf.String())
}

func TestWriteHistogram_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, sharingOf(t, twoClientRegistry(t)), FormatJSON))

	var got struct {
		Kind      string `json:"kind"`
		Manifests int    `json:"manifests"`
		Bins      []struct {
			K     int `json:"k"`
			Count int `json:"count"`
		} `json:"bins"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "sharing", got.Kind)
	assert.Equal(t, 2, got.Manifests)
	require.Len(t, got.Bins, 2)
	assert.Equal(t, 1, got.Bins[0].K)
	assert.Equal(t, 2, got.Bins[0].Count)
	assert.Equal(t, 2, got.Bins[1].K)
	assert.Equal(t, 1, got.Bins[1].Count)
}

func TestWriteHistogram_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHistogram(&buf, sharingOf(t, twoClientRegistry(t)), FormatText))
	out := buf.String()
	assert.Contains(t, out, "clients")
	assert.Contains(t, out, "66.67%")
	assert.Contains(t, out, "33.33%")
	assert.Contains(t, out, "2 manifests")

	buf.Reset()
	require.NoError(t, WriteHistogram(&buf, histogram.Frequency(twoClientRegistry(t)), FormatText))
	assert.Contains(t, buf.String(), "occurrences")
	assert.NotContains(t, buf.String(), "manifests")
}

func TestWriteHistogram_EmptyText(t *testing.T) {
	var buf bytes.Buffer
	h, err := histogram.Sharing(registry.NewRegistry(), 0)
	require.NoError(t, err)
	require.NoError(t, WriteHistogram(&buf, h, FormatText))
	assert.Contains(t, buf.String(), "0 manifests")
}

func TestWriteSummary(t *testing.T) {
	s := histogram.Summarize(twoClientRegistry(t))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s, FormatText))
	assert.Contains(t, buf.String(), "Bytes without dedup:     700 B (700)")
	assert.Contains(t, buf.String(), "Bytes with dedup:        600 B (600)")
	assert.Contains(t, buf.String(), "Dedup ratio:             1.1667")

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, s, FormatCSV))
	assert.Contains(t, buf.String(), "manifests,2\n")
	assert.Contains(t, buf.String(), "dedup_ratio,1.1667\n")

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, s, FormatJSON))
	var decoded histogram.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s, decoded)
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteHistogram(&buf, &histogram.Histogram{}, "png"), internal.ErrUnknownFormat)
	assert.ErrorIs(t, WriteSummary(&buf, histogram.Summary{}, "png"), internal.ErrUnknownFormat)
}

func TestNewRun(t *testing.T) {
	run, err := NewRun("", twoClientRegistry(t))
	require.NoError(t, err)
	assert.Len(t, run.ID, 36, "a uuid is generated")
	assert.Equal(t, []string{"client1.csv", "client2.csv"}, run.Manifests)
	assert.Equal(t, []histogram.Bin{{K: 1, Count: 2}, {K: 2, Count: 1}}, run.Sharing.Bins)
	assert.Equal(t, 3, run.Frequency.Total())
	assert.Equal(t, 3, run.Summary.DistinctChunks)

	run, err = NewRun("fixed", twoClientRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, "fixed", run.ID)
}

func TestRunKeysAndFields(t *testing.T) {
	keys := RunKeys("chunkshare", "r1")
	assert.Equal(t, Keys{
		Sharing:   "chunkshare:run:r1:sharing",
		Frequency: "chunkshare:run:r1:frequency",
		Summary:   "chunkshare:run:r1:summary",
		Manifests: "chunkshare:run:r1:manifests",
		Runs:      "chunkshare:runs",
	}, keys)

	h := &histogram.Histogram{Bins: []histogram.Bin{{K: 1, Count: 2}, {K: 2, Count: 1}}}
	assert.Equal(t, []interface{}{"1", 2, "2", 1}, binFields(h))
	assert.Nil(t, binFields(nil))
	assert.Equal(t, []interface{}{"a", "1", "b", "2"}, flatten([][2]string{{"a", "1"}, {"b", "2"}}))
}

func newMockStore(prefix string) (*RedisStore, *MockRedis) {
	rdb := &MockRedis{Pipe: new(MockPipeliner)}
	return &RedisStore{rdb: rdb, prefix: prefix}, rdb
}

func TestRedisStore_SaveRunQueuesRunKeys(t *testing.T) {
	store, rdb := newMockStore("fleet")
	run, err := NewRun("r1", twoClientRegistry(t))
	require.NoError(t, err)

	summary := append(summaryFields(run.Summary), [2]string{"created", run.Created.UTC().Format(time.RFC3339)})
	pipe := rdb.Pipe
	pipe.On("HSet", "fleet:run:r1:sharing", []interface{}{"1", 2, "2", 1}).Once()
	pipe.On("HSet", "fleet:run:r1:frequency", []interface{}{"1", 2, "2", 1}).Once()
	pipe.On("HSet", "fleet:run:r1:summary", flatten(summary)).Once()
	pipe.On("HSet", "fleet:run:r1:manifests", []interface{}{"1", "client1.csv", "2", "client2.csv"}).Once()
	pipe.On("RPush", "fleet:runs", []interface{}{"r1"}).Once()
	rdb.On("TxPipelined").Return(nil).Once()
	rdb.On("Close").Return(nil).Once()

	require.NoError(t, store.SaveRun(context.Background(), run))
	require.NoError(t, store.Shutdown())
	pipe.AssertExpectations(t)
	rdb.AssertExpectations(t)
	assert.Equal(t, "redis", store.Name())
}

func TestRedisStore_SaveRunSkipsEmptyHashes(t *testing.T) {
	store, rdb := newMockStore("fleet")
	run := &Run{ID: "r2", Sharing: &histogram.Histogram{}, Created: time.Unix(0, 0)}

	pipe := rdb.Pipe
	pipe.On("HSet", "fleet:run:r2:summary", mock.Anything).Once()
	pipe.On("RPush", "fleet:runs", []interface{}{"r2"}).Once()
	rdb.On("TxPipelined").Return(nil).Once()

	require.NoError(t, store.SaveRun(context.Background(), run))
	pipe.AssertExpectations(t)
	pipe.AssertNotCalled(t, "HSet", "fleet:run:r2:sharing", mock.Anything)
	pipe.AssertNotCalled(t, "HSet", "fleet:run:r2:manifests", mock.Anything)
}

func TestRedisStore_SaveRunTxFailure(t *testing.T) {
	store, rdb := newMockStore("fleet")
	run, err := NewRun("r3", twoClientRegistry(t))
	require.NoError(t, err)

	rdb.Pipe.On("HSet", mock.Anything, mock.Anything)
	rdb.Pipe.On("RPush", mock.Anything, mock.Anything)
	rdb.On("TxPipelined").Return(errors.New("EXECABORT Transaction discarded")).Once()

	err = store.SaveRun(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save run r3")
	assert.Contains(t, err.Error(), "EXECABORT")
	rdb.AssertExpectations(t)
}

// TestRedisStore_SaveRun needs a live server, e.g.
// CHUNKSHARE_TEST_REDIS=localhost:6379 go test ./pkg/report/
func TestRedisStore_SaveRun(t *testing.T) {
	addr := os.Getenv("CHUNKSHARE_TEST_REDIS")
	if addr == "" {
		t.Skip("CHUNKSHARE_TEST_REDIS not set")
	}
	prefix := fmt.Sprintf("chunkshare-test-%d", os.Getpid())
	store, err := NewRedisStore(internal.RedisConfig{Addr: addr, Prefix: prefix})
	require.NoError(t, err)
	defer store.Shutdown()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	run, err := NewRun("", twoClientRegistry(t))
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(ctx, run))

	keys := RunKeys(prefix, run.ID)
	defer rdb.Del(ctx, keys.Sharing, keys.Frequency, keys.Summary, keys.Manifests, keys.Runs)

	sharing, err := rdb.HGetAll(ctx, keys.Sharing).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "2", "2": "1"}, sharing)

	names, err := rdb.HGetAll(ctx, keys.Manifests).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "client1.csv", "2": "client2.csv"}, names)

	runs, err := rdb.LRange(ctx, keys.Runs, 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{run.ID}, runs)
}
