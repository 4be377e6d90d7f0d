package log

import (
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

type customFormatter struct{}

var levelNames = []string{"PANIC", "FATAL", "ERROR", "WARNING", "INFO", "DEBUG", "TRACE"}

func levelName(lv logrus.Level) string {
	if int(lv) < len(levelNames) {
		return levelNames[lv]
	}
	return "UNKNOWN"
}

// Format renders "<time> - <LEVEL> - <module>|<file:line> <message> k=v".
func (customFormatter) Format(e *logrus.Entry) ([]byte, error) {
	buf := e.Buffer
	if buf == nil {
		buf = &bytes.Buffer{}
	}
	fmt.Fprint(buf, e.Time.Format(LogTimeLayout), " - ", levelName(e.Level), " - ")
	if v, ok := e.Data[FieldKeyModule]; ok {
		fmt.Fprint(buf, v, "|")
	} else if e.HasCaller() {
		fmt.Fprint(buf, getPackageName(e.Caller.Function), "|")
	} else {
		buf.WriteString("--|")
	}
	if e.HasCaller() {
		fmt.Fprint(buf, path.Base(e.Caller.File), ":", e.Caller.Line, " ")
	}
	buf.WriteString(strings.TrimRight(e.Message, "\n"))

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if _, ok := systemFields[k]; ok {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, " %s=%v", k, e.Data[k])
	}
	buf.WriteString("\n")
	return buf.Bytes(), nil
}
