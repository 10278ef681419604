// Copyright 2015 Ka-Hing Cheung
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package internal

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/aws/smithy-go/logging"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var mu sync.Mutex
var loggers = make(map[string]*logHandle)

var framePlaceHolder = runtime.Frame{Function: "???", File: "???", Line: 0}

var logger = GetLogger("chunkshare_internal")

type logHandle struct {
	logrus.Logger

	name     string
	logid    string
	pid      int
	lvl      *logrus.Level
	colorful bool
}

func (l *logHandle) Format(e *logrus.Entry) ([]byte, error) {
	lvl := e.Level
	if l.lvl != nil {
		lvl = *l.lvl
	}
	lvlStr := strings.ToUpper(lvl.String())
	if l.colorful {
		var color int
		switch lvl {
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			color = 31 // RED
		case logrus.WarnLevel:
			color = 33 // YELLOW
		case logrus.InfoLevel:
			color = 34 // BLUE
		default: // logrus.TraceLevel, logrus.DebugLevel
			color = 35 // MAGENTA
		}
		lvlStr = fmt.Sprintf("\033[1;%dm%s\033[0m", color, lvlStr)
	}
	const timeFormat = "2006/01/02 15:04:05.000000"
	caller := e.Caller
	if caller == nil {
		caller = &framePlaceHolder
	}
	str := fmt.Sprintf("%s%v %s[%d] <%v>: %v [%s@%s:%d]",
		l.logid,
		e.Time.Format(timeFormat),
		l.name,
		l.pid,
		lvlStr,
		strings.TrimRight(e.Message, "\n"),
		MethodName(caller.Function),
		path.Base(caller.File),
		caller.Line)

	if len(e.Data) != 0 {
		str += " " + fmt.Sprint(e.Data)
	}
	if !strings.HasSuffix(str, "\n") {
		str += "\n"
	}
	return []byte(str), nil
}

// Returns a human-readable method name, removing internal markers added by Go
func MethodName(fullFuncName string) string {
	firstSlash := strings.Index(fullFuncName, "/")
	if firstSlash != -1 && firstSlash < len(fullFuncName)-1 {
		fullFuncName = fullFuncName[firstSlash+1:]
	}
	lastDot := strings.LastIndex(fullFuncName, ".")
	if lastDot == -1 {
		return fullFuncName
	}
	if lastDot == len(fullFuncName)-1 {
		// "pkg.name." names the segment before the dots
		trimmed := strings.TrimRight(fullFuncName, ".")
		if trimmed == "" {
			return fullFuncName
		}
		return MethodName(trimmed)
	}
	method := fullFuncName[lastDot+1:]
	// avoid func1
	if strings.HasPrefix(method, "func") && len(method) > 4 && method[4] >= '0' && method[4] <= '9' {
		candidate := MethodName(fullFuncName[:lastDot])
		if candidate != "" {
			method = candidate
		}
	}
	// avoid init.3
	if len(method) == 1 && method[0] >= '0' && method[0] <= '9' {
		candidate := MethodName(fullFuncName[:lastDot])
		if candidate != "" {
			method = candidate
		}
	}
	return method
}

// Logf lets a logHandle serve as the smithy logger of the S3 client.
func (l *logHandle) Logf(classification logging.Classification, format string, v ...interface{}) {
	switch classification {
	case logging.Warn:
		l.Warnf(format, v...)
	default:
		l.Debugf(format, v...)
	}
}

// settings are applied to every registered logger and inherited by loggers
// created afterwards.
type settings struct {
	level   logrus.Level
	out     io.Writer
	noColor bool
	logid   string
}

var current = settings{level: logrus.InfoLevel, out: os.Stderr}

func newLogger(name string) *logHandle {
	l := &logHandle{Logger: *logrus.New(), name: name, pid: os.Getpid()}
	l.Formatter = l
	l.SetReportCaller(true)
	l.Level = current.level
	l.Out = current.out
	l.logid = current.logid
	l.colorful = !current.noColor && (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
	return l
}

// GetLogger returns a logger mapped to `name`
func GetLogger(name string) *logHandle {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}
	logger := newLogger(name)
	loggers[name] = logger
	return logger
}

// update records a settings change and applies it to every logger.
func update(change func(*settings), apply func(*logHandle)) {
	mu.Lock()
	defer mu.Unlock()
	change(&current)
	for _, l := range loggers {
		apply(l)
	}
}

// SetLogLevel sets Level to all the loggers in the map
func SetLogLevel(lvl logrus.Level) {
	update(func(s *settings) { s.level = lvl }, func(l *logHandle) { l.Level = lvl })
}

func DisableLogColor() {
	update(func(s *settings) { s.noColor = true }, func(l *logHandle) { l.colorful = false })
}

// SetOutFile sends every logger to a daily-rotated file at name.YYYYMMDD,
// with name itself linked to the current file.
func SetOutFile(name string) error {
	logf, err := rotatelogs.New(
		name+".%Y%m%d",
		rotatelogs.WithLinkName(name),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", name, err)
	}
	update(func(s *settings) {
		s.out = logf
		s.noColor = true
	}, func(l *logHandle) {
		l.SetOutput(logf)
		l.colorful = false
	})
	return nil
}

func SetOutput(w io.Writer) {
	update(func(s *settings) { s.out = w }, func(l *logHandle) { l.SetOutput(w) })
}

// SetLogID prefixes every line with id, e.g. a short run id.
func SetLogID(id string) {
	update(func(s *settings) { s.logid = id }, func(l *logHandle) { l.logid = id })
}

func GetDefaultLogDir() string {
	var defaultLogDir = "/var/log"
	switch runtime.GOOS {
	case "linux":
		if os.Getuid() == 0 {
			break
		}
		fallthrough
	case "darwin", "windows":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Warn(err)
			return defaultLogDir
		}
		defaultLogDir = path.Join(homeDir, ".chunkshare")
	}
	return defaultLogDir
}
