package cmd

import (
	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/chunkshare/internal"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML config file (flags override it)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"debug", "v"},
			Usage:   "enable debug log",
		},
		&cli.BoolFlag{
			Name:  "trace",
			Usage: "enable trace log",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "show warning and errors only",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colors",
		},
		&cli.StringFlag{
			Name:  "log",
			Usage: "path of log file (rotated daily), e.g. " + internal.GetDefaultLogDir() + "/chunkshare.log",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "output format: text, csv or json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "write the report to this file instead of stdout",
		},
	}
}

func s3Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "s3-endpoint",
			Usage: "S3 endpoint for s3:// manifests, including the scheme (e.g. http://127.0.0.1:9000)",
		},
		&cli.StringFlag{
			Name:  "s3-region",
			Usage: "S3 region",
		},
		&cli.StringFlag{
			Name:    "s3-access-key",
			EnvVars: []string{"AWS_ACCESS_KEY_ID"},
			Usage:   "S3 access key",
		},
		&cli.StringFlag{
			Name:    "s3-secret-key",
			EnvVars: []string{"AWS_SECRET_ACCESS_KEY"},
			Usage:   "S3 secret key",
		},
	}
}

func redisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis server address (host:port)",
		},
		&cli.StringFlag{
			Name:    "redis-password",
			EnvVars: []string{"REDIS_PASSWORD"},
			Usage:   "Redis password",
		},
		&cli.IntFlag{
			Name:  "redis-db",
			Usage: "Redis database number",
		},
		&cli.StringFlag{
			Name:  "redis-prefix",
			Usage: "key prefix for stored runs",
		},
	}
}

func expandFlags(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}
