package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AppName names the state directory and log file
const AppName = "bundler"

// Level maps the -v count to a zerolog level: warnings by default, then
// info, debug and trace
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetupLogger installs the global logger. Records go to console in human
// form and, when the state directory is writable, to a JSON log file as
// well. The returned func closes the log file.
func SetupLogger(verbosity int, console io.Writer) func() {
	zerolog.SetGlobalLevel(Level(verbosity))

	out := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    !isTerminal(console),
	}}

	path := LogFilePath()
	file, err := openLogFile(path)
	if err == nil {
		out = append(out, file)
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(out...)).With().Timestamp()
	if verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Log file unavailable, logging to console only")
		return func() {}
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("Logger initialized")
	return func() { _ = file.Close() }
}

// GetLogger returns the global logger tagged with a component name
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// LogFilePath is $XDG_STATE_HOME/bundler/bundler.log, falling back to the
// platform state home
func LogFilePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = xdg.StateHome
	}
	if stateHome == "" {
		return AppName + ".log"
	}
	return filepath.Join(stateHome, AppName, AppName+".log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// Track logs the start of a phase and returns a func that logs its end with
// the elapsed time. Use as: defer logging.Track(logger, "emit")()
func Track(logger zerolog.Logger, phase string) func() {
	start := time.Now()
	logger.Debug().Str("phase", phase).Msg("Started")
	return func() {
		logger.Debug().Str("phase", phase).Dur("took", time.Since(start)).Msg("Finished")
	}
}
