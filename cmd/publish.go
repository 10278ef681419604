package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/chunkshare/internal"
	"github.com/zhengshuai-xiao/chunkshare/pkg/report"
)

// newStore is swapped out by tests.
var newStore = func(conf internal.RedisConfig) (report.Store, error) {
	return report.NewRedisStore(conf)
}

func cmdPublish() *cli.Command {
	return &cli.Command{
		Name:      "publish",
		Usage:     "Store sharing, frequency and summary results in Redis",
		ArgsUsage: manifestArgs,
		Description: `
Runs the full analysis and stores every result under
<prefix>:run:<run id>:{sharing,frequency,summary,manifests}, appending the run
id to <prefix>:runs, where a plotting job can pick it up.

Examples:
$ chunkshare publish --redis-addr redis.internal:6379 client*.csv`,
		Flags: expandFlags(s3Flags(), redisFlags()),
		Action: func(c *cli.Context) error {
			conf, reg, err := ingest(c)
			if err != nil {
				return err
			}
			run, err := report.NewRun(runID(c), reg)
			if err != nil {
				return err
			}

			store, err := newStore(conf.Redis)
			if err != nil {
				return err
			}
			defer store.Shutdown()

			if err := store.SaveRun(c.Context, run); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s\n", run.ID)
			return nil
		},
	}
}
