package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	SetLoggerConsole(false)
}

// Set by SetLoggerConsole and SetLoggerJSON; plain text when true.
var ColourDisabled bool

const (
	ansiRed     = "31"
	ansiGreen   = "32"
	ansiYellow  = "33"
	ansiMagenta = "35"
	ansiGray    = "90"
	ansiBold    = "1"
)

// Formats with %v. Taking a copy keeps the argument from escaping to the heap
// at call sites on hot paths.
func V[T any](copyThatEscapes T) string {
	return fmt.Sprintf("%v", copyThatEscapes)
}

// Like V, with the given verb.
func F[T any](f string, copyThatEscapes T) string {
	return fmt.Sprintf(f, copyThatEscapes)
}

func paint(s string, codes ...string) string {
	if ColourDisabled {
		return s
	}
	for _, c := range codes {
		s = "\x1b[" + c + "m" + s + "\x1b[0m"
	}
	return s
}

var levelTags = map[string]struct {
	tag    string
	colour []string
}{
	zerolog.LevelTraceValue: {"TRACE", []string{ansiMagenta}},
	zerolog.LevelDebugValue: {"DEBUG", []string{ansiYellow}},
	zerolog.LevelInfoValue:  {"INFO ", []string{ansiGreen}},
	zerolog.LevelWarnValue:  {"WARN ", []string{ansiRed}},
	zerolog.LevelErrorValue: {"ERROR", []string{ansiRed, ansiBold}},
	zerolog.LevelFatalValue: {"FATAL", []string{ansiRed, ansiBold}},
	zerolog.LevelPanicValue: {"PANIC", []string{ansiRed, ansiBold}},
}

// 0 info, 1 debug, 2+ trace. Negative only shows warnings and above.
func SetLevel(level int) {
	l := zerolog.TraceLevel
	switch {
	case level < 0:
		l = zerolog.WarnLevel
	case level == 0:
		l = zerolog.InfoLevel
	case level == 1:
		l = zerolog.DebugLevel
	}
	log.Logger = log.Logger.Level(l)
}

// Plain JSON lines, for when output is collected rather than read.
func SetLoggerJSON(out io.Writer) {
	ColourDisabled = true
	log.Logger = zerolog.New(out).With().Timestamp().Logger().Level(log.Logger.GetLevel())
}

// Human readable lines on stdout: time, file:line, level, message.
func SetLoggerConsole(noColour bool) {
	ColourDisabled = noColour
	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		caller := filepath.Base(file) + ":" + strconv.Itoa(line)
		if len(caller) > 20 {
			caller = ".." + caller[len(caller)-18:]
		}
		return fmt.Sprintf("%-20s", caller)
	}

	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly, NoColor: noColour}
	cw.FormatCaller = func(i any) string {
		s, _ := i.(string)
		return paint(s, ansiGray)
	}
	cw.FormatLevel = func(i any) string {
		s, _ := i.(string)
		if t, ok := levelTags[s]; ok {
			return paint("| "+t.tag+" |", t.colour...)
		}
		return paint(fmt.Sprintf("| %5v |", i), ansiBold)
	}
	cw.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.CallerFieldName,
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}
	log.Logger = zerolog.New(cw).With().Timestamp().Caller().Logger().Level(log.Logger.GetLevel())
}

// Logs heap and GC counters at debug level.
func MemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	const mib = 1 << 20
	log.Debug().Msg("(MiB): Alloc: " + V(m.Alloc/mib) + " Sys: " + V(m.Sys/mib) +
		" TotalAlloc: " + V(m.TotalAlloc/mib) + " HeapInuse: " + V(m.HeapInuse/mib) +
		". (#): NumGC: " + V(m.NumGC))
}
