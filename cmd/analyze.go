package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/internal/compression"
	"github.com/zhengshuai-xiao/chunkshare/pkg/histogram"
	"github.com/zhengshuai-xiao/chunkshare/pkg/registry"
	"github.com/zhengshuai-xiao/chunkshare/pkg/report"
	"github.com/zhengshuai-xiao/chunkshare/pkg/source"
)

const manifestArgs = "MANIFEST [MANIFEST...]"

func cmdSharing() *cli.Command {
	return &cli.Command{
		Name:      "sharing",
		Aliases:   []string{"share"},
		Usage:     "Histogram of chunks held by exactly k clients",
		ArgsUsage: manifestArgs,
		Description: `
Reads one hash manifest per client (lines of "<hash>,<size>"), merges them
into one chunk registry and prints, for k = 1..N, how many distinct chunks
are held by exactly k clients.

Examples:
$ chunkshare sharing client1.csv client2.csv client3.csv.gz
$ chunkshare sharing -f csv -o sharing.csv s3://hashes/client1.csv s3://hashes/client2.csv`,
		Flags: expandFlags(outputFlags(), s3Flags()),
		Action: func(c *cli.Context) error {
			conf, reg, err := ingest(c)
			if err != nil {
				return err
			}
			h, err := histogram.Sharing(reg, reg.Manifests())
			if err != nil {
				return err
			}
			return emit(c, conf, func(buf *bytes.Buffer) error {
				return report.WriteHistogram(buf, h, conf.Format)
			})
		},
	}
}

func cmdFrequency() *cli.Command {
	return &cli.Command{
		Name:      "frequency",
		Aliases:   []string{"freq"},
		Usage:     "Histogram of chunks observed exactly f times",
		ArgsUsage: manifestArgs,
		Flags:     expandFlags(outputFlags(), s3Flags()),
		Action: func(c *cli.Context) error {
			conf, reg, err := ingest(c)
			if err != nil {
				return err
			}
			h := histogram.Frequency(reg)
			return emit(c, conf, func(buf *bytes.Buffer) error {
				return report.WriteHistogram(buf, h, conf.Format)
			})
		},
	}
}

func cmdSummary() *cli.Command {
	return &cli.Command{
		Name:      "summary",
		Usage:     "Fleet-wide dedup totals and ratio",
		ArgsUsage: manifestArgs,
		Flags:     expandFlags(outputFlags(), s3Flags()),
		Action: func(c *cli.Context) error {
			conf, reg, err := ingest(c)
			if err != nil {
				return err
			}
			s := histogram.Summarize(reg)
			return emit(c, conf, func(buf *bytes.Buffer) error {
				return report.WriteSummary(buf, s, conf.Format)
			})
		},
	}
}

// loadConfig merges the config file with the command line; flags win.
func loadConfig(c *cli.Context) (*internal.Config, error) {
	conf, err := internal.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	manifests := c.Args().Slice()
	conf.Manifests = append(manifests, conf.Manifests...)

	if c.IsSet("format") {
		conf.Format = c.String("format")
	}
	if c.IsSet("output") {
		conf.Output = c.String("output")
	}
	if c.IsSet("s3-endpoint") {
		conf.S3.Endpoint = c.String("s3-endpoint")
	}
	if c.IsSet("s3-region") {
		conf.S3.Region = c.String("s3-region")
	}
	if c.IsSet("s3-access-key") {
		conf.S3.AccessKey = c.String("s3-access-key")
	}
	if c.IsSet("s3-secret-key") {
		conf.S3.SecretKey = c.String("s3-secret-key")
	}
	if c.IsSet("redis-addr") {
		conf.Redis.Addr = c.String("redis-addr")
	}
	if c.IsSet("redis-password") {
		conf.Redis.Password = c.String("redis-password")
	}
	if c.IsSet("redis-db") {
		conf.Redis.DB = c.Int("redis-db")
	}
	if c.IsSet("redis-prefix") {
		conf.Redis.Prefix = c.String("redis-prefix")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// ingest reads every configured manifest in order. Any failure aborts the
// whole run before anything is aggregated.
func ingest(c *cli.Context) (*internal.Config, *registry.Registry, error) {
	conf, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if len(conf.Manifests) == 0 {
		return nil, nil, fmt.Errorf("%w: usage: %s %s %s", internal.ErrNoManifests, c.App.Name, c.Command.Name, manifestArgs)
	}

	seen := internal.NewStringSet()
	needS3 := false
	for _, m := range conf.Manifests {
		if seen.Contains(m) {
			logger.Warnf("Manifest %s is listed more than once; each listing counts as a separate client", m)
		}
		seen.Add(m)
		if source.IsS3URI(m) {
			needS3 = true
		}
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	var getter source.ObjectGetter
	if needS3 {
		client, err := source.NewS3Client(ctx, conf.S3)
		if err != nil {
			return nil, nil, err
		}
		getter = client
	}

	reg, n, err := registry.NewReader(source.NewOpener(getter)).Ingest(ctx, conf.Manifests)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("Ingested %d manifests: %d distinct chunks", n, reg.Len())
	return conf, reg, nil
}

// emit renders into memory, then writes stdout or the output file whole.
// An output file ending in .gz, .zz or .sz is compressed to match.
func emit(c *cli.Context, conf *internal.Config, render func(buf *bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if conf.Output == "" {
		_, err := c.App.Writer.Write(buf.Bytes())
		return err
	}
	data := buf.Bytes()
	if ct := compression.DetectByName(conf.Output); ct != compression.Compress_none {
		var err error
		if data, err = compress(data, ct); err != nil {
			return fmt.Errorf("failed to compress report %s: %w", conf.Output, err)
		}
	}
	if err := internal.WriteFileAtomic(conf.Output, data); err != nil {
		return err
	}
	logger.Infof("Report written to %s (%d bytes)", conf.Output, len(data))
	return nil
}

func compress(data []byte, ct compression.CompressionType) ([]byte, error) {
	var out bytes.Buffer
	w, err := compression.NewWriter(&out, ct)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
