package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04:05"

type Logger interface {
	Info(format string, args ...interface{})
	Ok(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})

	// Prefix returns a copy of the logger whose lines start with prefix.
	Prefix(prefix string) Logger
	// With returns a copy of the logger that appends key=value pairs to every line.
	With(keyValues ...interface{}) Logger
}

type level struct {
	tag   string
	paint func(format string, a ...interface{}) string
}

var (
	levelInfo  = level{tag: "INFO", paint: color.CyanString}
	levelOk    = level{tag: " OK ", paint: color.GreenString}
	levelWarn  = level{tag: "WARN", paint: color.YellowString}
	levelError = level{tag: "ERR ", paint: color.RedString}
)

type defaultLogger struct {
	mu     *sync.Mutex
	out    io.Writer
	prefix string
	fields []interface{}
}

func NewDefaultLogger() Logger {
	return NewLogger(os.Stdout)
}

func NewLogger(out io.Writer) Logger {
	return &defaultLogger{
		mu:  new(sync.Mutex),
		out: out,
	}
}

func (l *defaultLogger) Info(format string, args ...interface{}) {
	l.print(levelInfo, format, args...)
}

func (l *defaultLogger) Ok(format string, args ...interface{}) {
	l.print(levelOk, format, args...)
}

func (l *defaultLogger) Warn(format string, args ...interface{}) {
	l.print(levelWarn, format, args...)
}

func (l *defaultLogger) Error(format string, args ...interface{}) {
	l.print(levelError, format, args...)
}

func (l *defaultLogger) Prefix(prefix string) Logger {
	cp := *l
	if cp.prefix != "" {
		prefix = cp.prefix + " / " + prefix
	}
	cp.prefix = prefix
	return &cp
}

func (l *defaultLogger) With(keyValues ...interface{}) Logger {
	cp := *l
	cp.fields = make([]interface{}, 0, len(l.fields)+len(keyValues))
	cp.fields = append(cp.fields, l.fields...)
	cp.fields = append(cp.fields, keyValues...)
	return &cp
}

func (l *defaultLogger) print(lvl level, format string, args ...interface{}) {
	var b strings.Builder

	b.WriteString(time.Now().Format(timeLayout))
	b.WriteString(" [")
	b.WriteString(lvl.paint(lvl.tag))
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(color.MagentaString(l.prefix))
		b.WriteString(": ")
	}
	b.WriteString(fmt.Sprintf(format, args...))
	writeFields(&b, l.fields)
	b.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

func writeFields(b *strings.Builder, fields []interface{}) {
	for i := 0; i < len(fields); i += 2 {
		key := fmt.Sprint(fields[i])
		var value interface{} = "!MISSING"
		if i+1 < len(fields) {
			value = fields[i+1]
		}

		text := fmt.Sprint(value)
		if strings.ContainsAny(text, " \t\n\"") {
			text = fmt.Sprintf("%q", text)
		}

		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(text)
	}
}
