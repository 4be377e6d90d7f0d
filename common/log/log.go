package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	LogTimeLayout = "2006-01-02 15:04:05.000"
)

type Level int

const (
	TraceLevel = Level(logrus.TraceLevel)
	DebugLevel = Level(logrus.DebugLevel)
	InfoLevel  = Level(logrus.InfoLevel)
	WarnLevel  = Level(logrus.WarnLevel)
	ErrorLevel = Level(logrus.ErrorLevel)
	FatalLevel = Level(logrus.FatalLevel)
	PanicLevel = Level(logrus.PanicLevel)
)

func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case FatalLevel:
		return "fatal"
	case PanicLevel:
		return "panic"
	default:
		return "unknown"
	}
}

func ParseLevel(s string) (Level, error) {
	lv, err := logrus.ParseLevel(s)
	if err != nil {
		return InfoLevel, errors.IllegalArgumentError.Wrapf(err, "InvalidLevel(level=%s)", s)
	}
	return Level(lv), nil
}

const (
	FieldKeyModule   = "module"
	FieldKeyProducer = "producer"
)

var systemFields = map[string]bool{
	FieldKeyModule: true,
}

var Trace, Print, Debug, Info, Warn, Error, Panic, Fatal func(args ...interface{})
var Tracef, Printf, Debugf, Infof, Warnf, Errorf, Panicf, Fatalf func(format string, args ...interface{})

type Fields logrus.Fields

type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithFields(Fields) Logger
	SetReportCaller(yn bool)
	SetLevel(lv Level)
	GetLevel() Level
	SetConsoleLevel(lv Level)
	SetFileWriter(w io.Writer)
	SetOutput(w io.Writer)

	addHook(h logrus.Hook)
}

type entryWrapper struct {
	*logrus.Entry
}

func (w entryWrapper) WithFields(fields Fields) Logger {
	return &entryWrapper{
		w.Entry.WithFields(logrus.Fields(fields)),
	}
}

func (w entryWrapper) SetReportCaller(yn bool) {
	w.Entry.Logger.SetReportCaller(yn)
}

func (w entryWrapper) SetLevel(lv Level) {
	w.Entry.Logger.SetLevel(logrus.Level(lv))
}

func (w entryWrapper) GetLevel() Level {
	return Level(w.Entry.Logger.GetLevel())
}

func (w entryWrapper) SetConsoleLevel(lv Level) {
	w.Entry.Logger.Formatter.(*logFilter).SetDefaultLevel(lv)
}

func (w entryWrapper) SetFileWriter(fw io.Writer) {
	w.Entry.Logger.Formatter.(*logFilter).SetFileWriter(fw)
}

func (w entryWrapper) SetOutput(out io.Writer) {
	w.Entry.Logger.SetOutput(out)
}

func (w entryWrapper) addHook(h logrus.Hook) {
	w.Entry.Logger.AddHook(h)
}

type loggerWrapper struct {
	*logrus.Logger
}

func (w loggerWrapper) WithFields(fields Fields) Logger {
	return &entryWrapper{
		w.Logger.WithFields(logrus.Fields(fields)),
	}
}

func (w loggerWrapper) SetLevel(lv Level) {
	w.Logger.SetLevel(logrus.Level(lv))
}

func (w loggerWrapper) GetLevel() Level {
	return Level(w.Logger.GetLevel())
}

func (w loggerWrapper) SetConsoleLevel(lv Level) {
	w.Logger.Formatter.(*logFilter).SetDefaultLevel(lv)
}

func (w loggerWrapper) SetFileWriter(fw io.Writer) {
	w.Logger.Formatter.(*logFilter).SetFileWriter(fw)
}

func (w loggerWrapper) addHook(h logrus.Hook) {
	w.Logger.AddHook(h)
}

func getPackageName(f string) string {
	lastSlash := strings.LastIndex(f, "/")
	if lastSlash >= 0 {
		f = f[lastSlash+1:]
	}

	firstPeriod := strings.Index(f, ".")
	if firstPeriod > 0 {
		f = f[0:firstPeriod]
	}
	return f
}

var globalLogger Logger

func SetGlobalLogger(logger Logger) {
	globalLogger = logger

	Print = logger.Print
	Printf = logger.Printf

	Trace = logger.Trace
	Tracef = logger.Tracef

	Debug = logger.Debug
	Debugf = logger.Debugf

	Info = logger.Info
	Infof = logger.Infof

	Warn = logger.Warn
	Warnf = logger.Warnf

	Error = logger.Error
	Errorf = logger.Errorf

	Panic = logger.Panic
	Panicf = logger.Panicf

	Fatal = logger.Fatal
	Fatalf = logger.Fatalf
}

func WithFields(fields Fields) Logger {
	return globalLogger.WithFields(fields)
}

// WithModule returns a logger tagging every entry with the module name.
func WithModule(module string) Logger {
	return globalLogger.WithFields(Fields{FieldKeyModule: module})
}

func GlobalLogger() Logger {
	return globalLogger
}

// New returns a logger writing to stderr. Entries below the console level
// only reach the file writer, if any.
func New() Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Level = logrus.InfoLevel
	logger.SetReportCaller(true)
	logger.SetFormatter(newLogFilter(customFormatter{}))
	return &loggerWrapper{
		Logger: logger,
	}
}

func init() {
	logger := New()
	SetGlobalLogger(logger)
}
