package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var stderr = struct{ io.Writer }{os.Stderr}

func init() { //nolint:gochecknoinits // init with zerolog is idiomatic
	configureLogging()
}

type tTesting interface {
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Helper()
	Cleanup(f func())
}

// ConfigureTestLogging allows logs to be associated with individual tests
func ConfigureTestLogging(t tTesting) {
	oldLogger := log.Logger
	oldContextLogger := zerolog.DefaultContextLogger
	configureLogging(zerolog.ConsoleTestWriter(t))
	t.Cleanup(func() {
		log.Logger = oldLogger
		zerolog.DefaultContextLogger = oldContextLogger
	})
}

func configureLogging(loggingOptions ...func(w *zerolog.ConsoleWriter)) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(levelFromEnv())

	isTerminal := isatty.IsTerminal(os.Stdout.Fd())

	defaultLogging := func(w *zerolog.ConsoleWriter) {
		w.Out = stderr
		w.NoColor = !isTerminal
		w.TimeFormat = "15:04:05.999 |"
		w.PartsOrder = []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			zerolog.CallerFieldName,
			zerolog.MessageFieldName,
		}

		w.FormatFieldName = func(i interface{}) string {
			return fmt.Sprintf("[%s:", i)
		}

		w.FormatFieldValue = func(i interface{}) string {
			// don't print nil in case field value wasn't present
			if i == nil {
				i = ""
			}
			return fmt.Sprintf("%s]", i)
		}
	}

	loggingOptions = append([]func(w *zerolog.ConsoleWriter){defaultLogging}, loggingOptions...)

	textWriter := zerolog.NewConsoleWriter(loggingOptions...)

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		short := file

		separatorCount := 2
		countedSeparators := 0

		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				countedSeparators += 1
				if countedSeparators >= separatorCount {
					short = file[i+1:]
					break
				}
			}
		}

		return short + ":" + strconv.Itoa(line)
	}

	log.Logger = zerolog.New(textWriter).With().Timestamp().Caller().Logger()
	zerolog.DefaultContextLogger = &log.Logger
}

func levelFromEnv() zerolog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}
