// Copyright 2025 zhengshuai.xiao@outlook.com
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
package report

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/pkg/histogram"
)

var logger = internal.GetLogger("chunkshare_report")

// RedisStore writes runs as hashes:
//
//	<prefix>:run:<id>:sharing    k -> count
//	<prefix>:run:<id>:frequency  f -> count
//	<prefix>:run:<id>:summary    field -> value
//	<prefix>:run:<id>:manifests  owner id -> manifest name
//	<prefix>:runs                list of run ids, newest last
type RedisStore struct {
	rdb    txPipeliner
	prefix string
}

// txPipeliner is the slice of redis.UniversalClient a RedisStore writes through.
type txPipeliner interface {
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Close() error
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(conf internal.RedisConfig) (*RedisStore, error) {
	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{conf.Addr},
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", internal.RemovePassword(conf.Addr), err)
	}
	logger.Infof("Connected to redis at %s, db %d", internal.RemovePassword(conf.Addr), conf.DB)
	return &RedisStore{rdb: rdb, prefix: conf.Prefix}, nil
}

func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) Shutdown() error {
	return s.rdb.Close()
}

func (s *RedisStore) SaveRun(ctx context.Context, run *Run) error {
	keys := RunKeys(s.prefix, run.ID)
	summary := summaryFields(run.Summary)
	summary = append(summary, [2]string{"created", run.Created.UTC().Format(time.RFC3339)})

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if vals := binFields(run.Sharing); len(vals) > 0 {
			pipe.HSet(ctx, keys.Sharing, vals...)
		}
		if vals := binFields(run.Frequency); len(vals) > 0 {
			pipe.HSet(ctx, keys.Frequency, vals...)
		}
		pipe.HSet(ctx, keys.Summary, flatten(summary)...)
		if len(run.Manifests) > 0 {
			names := make([]interface{}, 0, 2*len(run.Manifests))
			for i, name := range run.Manifests {
				names = append(names, strconv.Itoa(i+1), name)
			}
			pipe.HSet(ctx, keys.Manifests, names...)
		}
		pipe.RPush(ctx, keys.Runs, run.ID)
		return nil
	})
	if err != nil {
		logger.Errorf("SaveRun: transaction failed for run %s: %v", run.ID, err)
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	logger.Infof("Saved run %s under %s:run:%s", run.ID, s.prefix, run.ID)
	return nil
}

type Keys struct {
	Sharing   string
	Frequency string
	Summary   string
	Manifests string
	Runs      string
}

func RunKeys(prefix, id string) Keys {
	base := prefix + ":run:" + id
	return Keys{
		Sharing:   base + ":sharing",
		Frequency: base + ":frequency",
		Summary:   base + ":summary",
		Manifests: base + ":manifests",
		Runs:      prefix + ":runs",
	}
}

// binFields flattens bins into HSET field/value arguments.
func binFields(h *histogram.Histogram) []interface{} {
	if h == nil {
		return nil
	}
	vals := make([]interface{}, 0, 2*len(h.Bins))
	for _, b := range h.Bins {
		vals = append(vals, strconv.FormatUint(b.K, 10), b.Count)
	}
	return vals
}

func flatten(pairs [][2]string) []interface{} {
	vals := make([]interface{}, 0, 2*len(pairs))
	for _, p := range pairs {
		vals = append(vals, p[0], p[1])
	}
	return vals
}
