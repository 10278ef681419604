package cmd

import (
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/zhengshuai-xiao/chunkshare/internal"
)

var logger = internal.GetLogger("chunkshare_cmd")

const runIDKey = "runID"

func Main(args []string) error {
	app := newApp()
	err := app.Run(reorderOptions(app, args))
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		err = nil
	}

	return err
}

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print version only",
	}
	return &cli.App{
		Name:                 "chunkshare",
		Usage:                "Measure cross-client chunk sharing from dedup hash manifests.",
		Version:              internal.Version(),
		Copyright:            "Apache License 2.0",
		HideHelpCommand:      true,
		EnableBashCompletion: true,
		Flags:                globalFlags(),
		Before:               setup,
		Commands: []*cli.Command{
			cmdSharing(),
			cmdFrequency(),
			cmdSummary(),
			cmdPublish(),
		},
	}
}

// setup applies the logging flags and stamps the run id on every log line.
func setup(c *cli.Context) error {
	switch {
	case c.Bool("trace"):
		internal.SetLogLevel(logrus.TraceLevel)
	case c.Bool("verbose"):
		internal.SetLogLevel(logrus.DebugLevel)
	case c.Bool("quiet"):
		internal.SetLogLevel(logrus.WarnLevel)
	default:
		internal.SetLogLevel(logrus.InfoLevel)
	}
	if c.Bool("no-color") {
		internal.DisableLogColor()
	}
	path, err := logFile(c)
	if err != nil {
		return err
	}
	if path != "" {
		if err := internal.SetOutFile(path); err != nil {
			return err
		}
	}

	runID := uuid.New().String()
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[runIDKey] = runID
	internal.SetLogID("[" + runID[:8] + "] ")
	return nil
}

// logFile is --log if given, else log_file from the config file.
func logFile(c *cli.Context) (string, error) {
	if c.IsSet("log") {
		return c.String("log"), nil
	}
	conf, err := internal.LoadConfig(c.String("config"))
	if err != nil {
		return "", err
	}
	return conf.LogFile, nil
}

func runID(c *cli.Context) string {
	if id, ok := c.App.Metadata[runIDKey].(string); ok {
		return id
	}
	return ""
}

// reorderOptions moves global flags ahead of the command so they may be
// given anywhere on the command line.
func reorderOptions(app *cli.App, args []string) []string {
	var newArgs = []string{args[0]}
	var others []string
	globalFlags := append(app.Flags, cli.VersionFlag)
	for i := 1; i < len(args); i++ {
		option := args[i]
		if ok, hasValue := isFlag(globalFlags, option); ok {
			newArgs = append(newArgs, option)
			if hasValue {
				i++
				if i >= len(args) {
					logger.Fatalf("option %s requires value", option)
				}
				newArgs = append(newArgs, args[i])
			}
		} else {
			others = append(others, option)
		}
	}
	// no command
	if len(others) == 0 {
		return newArgs
	}
	cmdName := others[0]
	var cmd *cli.Command
	for _, c := range app.Commands {
		if c.Name == cmdName || internal.StringContains(c.Aliases, cmdName) {
			cmd = c
			break
		}
	}
	if cmd == nil {
		// can't recognize the command, skip it
		return append(newArgs, others...)
	}

	newArgs = append(newArgs, cmdName)
	args, others = others[1:], nil
	// -h is valid for all the commands
	cmdFlags := append(cmd.Flags, cli.HelpFlag)
	for i := 0; i < len(args); i++ {
		option := args[i]
		if option == "--" {
			others = append(others, args[i:]...)
			break
		}
		if ok, hasValue := isFlag(cmdFlags, option); ok {
			newArgs = append(newArgs, option)
			if hasValue && len(args[i+1:]) > 0 {
				i++
				newArgs = append(newArgs, args[i])
			}
		} else {
			if strings.HasPrefix(option, "-") && !internal.StringContains(args, "--generate-bash-completion") {
				logger.Fatalf("unknown option: %s", option)
			}
			others = append(others, option)
		}
	}
	return append(newArgs, others...)
}

func isFlag(flags []cli.Flag, option string) (bool, bool) {
	if !strings.HasPrefix(option, "-") {
		return false, false
	}
	// --V or -v work the same
	option = strings.TrimLeft(option, "-")
	for _, flag := range flags {
		_, isBool := flag.(*cli.BoolFlag)
		for _, name := range flag.Names() {
			if option == name || strings.HasPrefix(option, name+"=") {
				return true, !isBool && !strings.Contains(option, "=")
			}
		}
	}
	return false, false
}
