package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogStatus int

const (
	VERBOSE LogStatus = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

var minStatus = INFO

func (e LogStatus) String() string {
	return []string{
		"V",
		"D",
		"I",
		"✓",
		"+",
		"-",
		"X",
		"!",
		"!!",
		"PANIC",
	}[e]
}

func (e LogStatus) Color() *color.Color {
	return []*color.Color{
		color.New(color.FgWhite, color.Italic),                //Verbose
		color.New(color.FgWhite, color.Italic),                //Debug
		color.New(color.FgWhite),                              //Info
		color.New(color.FgHiGreen),                            //Success
		color.New(color.FgGreen, color.Italic),                //New
		color.New(color.FgYellow, color.Italic),               //Remove
		color.New(color.FgHiYellow),                           //Stop
		color.New(color.FgYellow, color.Underline),            //Warning
		color.New(color.FgHiRed, color.Bold),                  //Error
		color.New(color.FgHiRed, color.Bold, color.Underline), //PANIC
	}[e]
}

// Level returns the numeric level of this status, suitable
// for use with SetMinLoggingLevel.
func (e LogStatus) Level() int { return int(e) }

// ParseLevel converts a textual level (as found in config) to
// a LogStatus. Unknown values fall back to INFO.
func ParseLevel(level string) LogStatus {
	switch strings.ToLower(level) {
	case "verbose", "trace":
		return VERBOSE
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

type Logger interface {
	Emit(LogStatus, string, ...interface{})
	Verbosef(string, ...interface{})
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	// Printf and Fatalf allow a Logger to be handed to
	// libraries (such as goose) that expect this shape.
	Printf(string, ...interface{})
	Fatalf(string, ...interface{})
}

type loggerImpl struct {
	name string
}

func (l *loggerImpl) Emit(status LogStatus, message string, interpolations ...interface{}) {
	Log.Emit(status, l.name, message, interpolations...)
}

func (l *loggerImpl) Verbosef(message string, args ...interface{}) { l.Emit(VERBOSE, message, args...) }
func (l *loggerImpl) Debugf(message string, args ...interface{})   { l.Emit(DEBUG, message, args...) }
func (l *loggerImpl) Infof(message string, args ...interface{})    { l.Emit(INFO, message, args...) }
func (l *loggerImpl) Warnf(message string, args ...interface{})    { l.Emit(WARNING, message, args...) }
func (l *loggerImpl) Errorf(message string, args ...interface{})   { l.Emit(ERROR, message, args...) }
func (l *loggerImpl) Printf(message string, args ...interface{})   { l.Emit(INFO, message, args...) }
func (l *loggerImpl) Fatalf(message string, args ...interface{})   { l.Emit(FATAL, message, args...) }

type LoggerManager interface {
	GetLogger(string) Logger
	Emit(LogStatus, string, string, ...interface{})
}

var Log LoggerManager = &loggerMgr{
	offset: 0,
}

type loggerMgr struct {
	sync.Mutex
	offset int
	sink   io.WriteCloser
}

func (l *loggerMgr) GetLogger(name string) Logger {
	return &loggerImpl{name: name}
}

func (l *loggerMgr) Emit(status LogStatus, name string, message string, interpolations ...interface{}) {
	if status < minStatus {
		return
	}

	l.Lock()
	defer l.Unlock()

	l.setNameOffset(len(name))
	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, status, fmt.Sprintf(message, interpolations...))
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	status.Color().Print(msg)
	if l.sink != nil {
		fmt.Fprintf(l.sink, "%s %s", time.Now().Format(time.RFC3339), msg)
	}
}

func (l *loggerMgr) setNameOffset(offset int) {
	if offset > l.offset {
		l.offset = offset
	}
}

// FileSinkConfig controls the optional rotating log file which
// mirrors everything written to the console.
type FileSinkConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// EnableFileSink attaches a rotating file writer to the global
// logger manager. Calling this with an empty path is a NO-OP.
func EnableFileSink(config FileSinkConfig) {
	if config.Path == "" {
		return
	}

	mgr, ok := Log.(*loggerMgr)
	if !ok {
		return
	}

	mgr.Lock()
	defer mgr.Unlock()
	if mgr.sink != nil {
		_ = mgr.sink.Close()
	}
	mgr.sink = &lumberjack.Logger{
		Filename:   config.Path,
		MaxSize:    config.MaxSizeMB,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAgeDays,
		Compress:   true,
	}
}

// Close flushes and closes the file sink, if one is attached.
func Close() {
	if mgr, ok := Log.(*loggerMgr); ok {
		mgr.Lock()
		defer mgr.Unlock()
		if mgr.sink != nil {
			_ = mgr.sink.Close()
			mgr.sink = nil
		}
	}
}

func SetMinLoggingLevel(level int) {
	minStatus = LogStatus(level)
}

func Get(name string) Logger {
	return Log.GetLogger(name)
}
