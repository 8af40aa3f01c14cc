package diag

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// ResultField marks an Info entry as a check result; its value replaces the level label.
const ResultField = "result"

// ElapsedFormatter formats entries as "[0000123 ms] [LEVEL] message",
// with the time measured from Start.
type ElapsedFormatter struct {
	Start time.Time
}

// Format implements logrus.Formatter.
func (f *ElapsedFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%07d ms] [%-5s] %s", e.Time.Sub(f.Start).Milliseconds(), label(e), e.Message)
	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		if k != ResultField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func label(e *logrus.Entry) string {
	if v, ok := e.Data[ResultField].(string); ok {
		return v
	}
	switch e.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return "FAIL"
	case logrus.WarnLevel:
		return "WARN"
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	default:
		return "INFO"
	}
}
