package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	config "github.com/mwantia/costquery/internal/config/server"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerService is the printf-style leveled logger passed to every service
type LoggerService interface {
	Debug(msg string, args ...any)

	Info(msg string, args ...any)

	Warn(msg string, args ...any)

	Error(msg string, args ...any)

	Fatal(msg string, args ...any)

	Named(name string) LoggerService
}

type LoggerServiceImpl struct {
	cfg   config.LogServerConfig
	name  string
	level LogLevel
	sink  *sink
}

// sink is shared by a logger and all of its named children
type sink struct {
	mutex    sync.Mutex
	terminal io.Writer
	file     io.Writer

	now  func() time.Time
	exit func(int)
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func NewLoggerService(name string, cfg config.LogServerConfig) LoggerService {
	s := &sink{
		now:  time.Now,
		exit: os.Exit,
	}

	if !cfg.NoTerminal {
		s.terminal = os.Stdout
	}

	if cfg.File != "" {
		s.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
			Compress:   cfg.Rotation.Compress,
		}
	}

	if s.terminal == nil && s.file == nil {
		s.terminal = os.Stdout
	}

	return &LoggerServiceImpl{
		cfg:   cfg,
		name:  strings.TrimSpace(name),
		level: Parse(cfg.Level),
		sink:  s,
	}
}

// NewLoggerServiceWithWriter creates a logger writing uncolored lines to w only
func NewLoggerServiceWithWriter(name string, cfg config.LogServerConfig, w io.Writer) LoggerService {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}

	return &LoggerServiceImpl{
		cfg:   cfg,
		name:  strings.TrimSpace(name),
		level: Parse(cfg.Level),
		sink: &sink{
			file: w,
			now:  time.Now,
			exit: os.Exit,
		},
	}
}

// Discard returns a logger that drops every message below Fatal
func Discard() LoggerService {
	return &LoggerServiceImpl{
		level: Fatal,
		sink: &sink{
			now:  time.Now,
			exit: os.Exit,
		},
	}
}

func (impl *LoggerServiceImpl) format(level LogLevel, msg string, args []any) (plain, colored string) {
	timestamp := impl.sink.now().Format(impl.cfg.TimeFormat)
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	if impl.cfg.JSON {
		jsonBytes, _ := json.Marshal(logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   impl.name,
			Message:   msg,
		})
		line := string(jsonBytes) + "\n"
		return line, line
	}

	prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
	if impl.name != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, impl.name)
	}

	plain = fmt.Sprintf("%s %s\n", prefix, msg)
	if impl.cfg.NoColor {
		return plain, plain
	}
	return plain, fmt.Sprintf("%s%s %s\033[0m\n", Color(level), prefix, msg)
}

func (impl *LoggerServiceImpl) log(level LogLevel, msg string, args ...any) {
	if level < impl.level {
		return
	}

	s := impl.sink
	if s.terminal != nil || s.file != nil {
		plain, colored := impl.format(level, msg, args)

		s.mutex.Lock()
		// Color codes only go to the terminal, rotated files stay plain
		if s.terminal != nil {
			io.WriteString(s.terminal, colored)
		}
		if s.file != nil {
			io.WriteString(s.file, plain)
		}
		s.mutex.Unlock()
	}

	if level == Fatal {
		s.exit(1)
	}
}

func (impl *LoggerServiceImpl) Debug(msg string, args ...any) {
	impl.log(Debug, msg, args...)
}

func (impl *LoggerServiceImpl) Info(msg string, args ...any) {
	impl.log(Info, msg, args...)
}

func (impl *LoggerServiceImpl) Warn(msg string, args ...any) {
	impl.log(Warn, msg, args...)
}

func (impl *LoggerServiceImpl) Error(msg string, args ...any) {
	impl.log(Error, msg, args...)
}

func (impl *LoggerServiceImpl) Fatal(msg string, args ...any) {
	impl.log(Fatal, msg, args...)
}

// Named returns a child logger sharing the same output. Names nest as
// "parent/child"; an empty name returns a logger with the parent's name.
func (impl *LoggerServiceImpl) Named(name string) LoggerService {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		name = impl.name
	case impl.name != "":
		name = impl.name + "/" + name
	}

	return &LoggerServiceImpl{
		cfg:   impl.cfg,
		name:  name,
		level: impl.level,
		sink:  impl.sink,
	}
}
