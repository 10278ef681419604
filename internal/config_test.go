package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	conf, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), conf)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunkshare.yaml")
	content := `
manifests:
  - /data/client1.csv
  - s3://hashes/client2.csv.gz
format: csv
redis:
  addr: redis.internal:6380
  db: 2
log_file: /var/log/chunkshare/run.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/data/client1.csv", "s3://hashes/client2.csv.gz"}, conf.Manifests)
	assert.Equal(t, "csv", conf.Format)
	assert.Equal(t, "redis.internal:6380", conf.Redis.Addr)
	assert.Equal(t, 2, conf.Redis.DB)
	assert.Equal(t, "/var/log/chunkshare/run.log", conf.LogFile)
	// untouched keys keep their defaults
	assert.Equal(t, "chunkshare", conf.Redis.Prefix)
	assert.Equal(t, "us-east-1", conf.S3.Region)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: [unclosed"), 0644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("format: png\n"), 0644))
	_, err = LoadConfig(unknown)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
