package log

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

type logFilter struct {
	mtx          sync.Mutex
	formatter    logrus.Formatter
	defaultLevel Level
	moduleLevels map[string]Level

	fileWriter io.Writer
}

func newLogFilter(formatter logrus.Formatter) *logFilter {
	return &logFilter{
		formatter:    formatter,
		defaultLevel: TraceLevel,
		moduleLevels: make(map[string]Level),
	}
}

func (f *logFilter) Format(e *logrus.Entry) ([]byte, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	level := f.defaultLevel

	var module string
	if value, ok := e.Data[FieldKeyModule]; !ok {
		if e.HasCaller() {
			module = getPackageName(e.Caller.Function)
		}
	} else if s, ok := value.(string); ok {
		module = s
	}

	if len(module) > 0 {
		if lv, ok := f.moduleLevels[module]; ok {
			level = lv
		}
	}

	if e.Level > logrus.Level(level) && f.fileWriter == nil {
		return nil, nil
	}
	buf, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}
	if f.fileWriter != nil && len(buf) > 0 {
		_, _ = f.fileWriter.Write(buf)
	}
	if e.Level > logrus.Level(level) {
		return nil, nil
	}
	return buf, nil
}

func (f *logFilter) SetModuleLevel(module string, level Level) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.moduleLevels[module] = level
}

func (f *logFilter) SetDefaultLevel(level Level) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.defaultLevel = level
}

func (f *logFilter) GetDefaultLevel() Level {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.defaultLevel
}

// SetFileWriter set file writer
func (f *logFilter) SetFileWriter(writer io.Writer) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.fileWriter = writer
}
