// Package common provides the logging setup and startup sequence of the secretscrub binary.
package common

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/alexai-ops/secretscrub/pkg/format"
	"github.com/alexai-ops/secretscrub/pkg/httpclient"
	"github.com/alexai-ops/secretscrub/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information - set via ldflags during build
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Log configuration
var (
	originalTermState *term.State
	JsonLogoutput     bool
	LogFile           string
	LogColor          bool
	LogDebug          bool
	LogLevel          string
	IgnoreProxy       bool
)

// TerminalRestorer is a function that can be called to restore terminal state
var TerminalRestorer func()

// CustomWriter wraps an os.File with proper cross-platform newline handling
type CustomWriter struct {
	Writer *os.File
}

func (cw *CustomWriter) Write(p []byte) (n int, err error) {
	originalLen := len(p)

	if bytes.HasSuffix(p, []byte("\n")) {
		p = bytes.TrimSuffix(p, []byte("\n"))
	}

	// zerolog always terminates with \n, see https://github.com/rs/zerolog/blob/master/log.go#L474
	modified := append(p, format.GetPlatformAgnosticNewline()...)

	written, err := cw.Writer.Write(modified)
	if err != nil {
		return 0, err
	}

	if written != len(modified) {
		return 0, io.ErrShortWrite
	}

	return originalLen, nil
}

// FatalHook is a zerolog hook that restores terminal state before fatal exits
type FatalHook struct{}

func (h FatalHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.FatalLevel {
		if TerminalRestorer != nil {
			TerminalRestorer()
		}
	}
}

// SaveTerminalState saves the current terminal state for later restoration
func SaveTerminalState() {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		state, err := term.GetState(int(os.Stdin.Fd()))
		if err == nil {
			originalTermState = state
		}
	}
}

// RestoreTerminalState restores the terminal to its saved state
func RestoreTerminalState() {
	if originalTermState != nil {
		_ = term.Restore(int(os.Stdin.Fd()), originalTermState)
	}
}

// InitLogger initializes the zerolog logger with the configured options
// Logs go to stderr; stdout only carries the run summary and rule output.
func InitLogger(cmd *cobra.Command) {
	defaultOut := &CustomWriter{Writer: os.Stderr}
	colorEnabled := LogColor

	if LogFile != "" {
		// #nosec G304 - User-provided log file path via --log-file flag, user controls their own filesystem
		runLogFile, err := os.OpenFile(
			LogFile,
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			format.FileUserReadWrite,
		)
		if err != nil {
			panic(err)
		}
		defaultOut = &CustomWriter{Writer: runLogFile}

		rootFlags := cmd.Root().PersistentFlags()
		if !rootFlags.Changed("color") {
			colorEnabled = false
		}
	}

	fatalHook := FatalHook{}

	if JsonLogoutput {
		// For JSON output, wrap with HitLevelWriter to transform level field
		hitWriter := &logging.HitLevelWriter{}
		hitWriter.SetOutput(defaultOut)
		logging.SetGlobalHitWriter(hitWriter)
		log.Logger = zerolog.New(hitWriter).With().Timestamp().Logger().Hook(fatalHook)
	} else {
		// For console output, use custom FormatLevel to color the hit level
		output := zerolog.ConsoleWriter{
			Out:         defaultOut,
			TimeFormat:  time.RFC3339,
			NoColor:     !colorEnabled,
			FormatLevel: formatLevelWithHitColor(colorEnabled),
		}
		// Wrap with HitLevelWriter to transform JSON before ConsoleWriter processes it
		hitWriter := &logging.HitLevelWriter{}
		hitWriter.SetOutput(&output)
		logging.SetGlobalHitWriter(hitWriter)
		log.Logger = zerolog.New(hitWriter).With().Timestamp().Logger().Hook(fatalHook)
	}
}

var levelColors = map[string]string{
	"hit":   "35",
	"trace": "90",
	"info":  "32",
	"warn":  "33",
	"error": "31",
	"fatal": "31",
	"panic": "31",
}

// formatLevelWithHitColor colors the level column, with magenta for the hit level.
func formatLevelWithHitColor(colorEnabled bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, ok := i.(string)
		if !ok {
			return ""
		}
		color, known := levelColors[level]
		if !colorEnabled || !known {
			return level
		}
		return "\x1b[" + color + "m" + level + "\x1b[0m"
	}
}

// SetGlobalLogLevel sets the global log level from --log-level, falling back to --verbose.
// "hit" only shows findings and errors.
func SetGlobalLogLevel(cmd *cobra.Command) {
	if LogLevel != "" {
		level, err := logging.ParseLevel(LogLevel)
		if err != nil || level == zerolog.NoLevel {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			log.Warn().Str("logLevelSpecified", LogLevel).Msg("Invalid log level, defaulting to info")
			return
		}
		zerolog.SetGlobalLevel(level)
		log.Debug().Str("logLevel", LogLevel).Msg("Log level set (explicit)")
		return
	}

	if LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("Log level set to debug (-v)")
		return
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// AddCommonFlags adds the common logging and output flags to a cobra command
func AddCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&JsonLogoutput, "json", "", false, "Use JSON as log output format")
	cmd.PersistentFlags().StringVarP(&LogFile, "logfile", "l", "", "Log output to a file")
	cmd.PersistentFlags().BoolVarP(&LogDebug, "verbose", "v", false, "Enable debug logging (shortcut for --log-level=debug)")
	cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Set log level globally (trace, debug, info, warn, hit, error). Example: --log-level=hit")
	cmd.PersistentFlags().BoolVar(&LogColor, "color", true, "Enable colored log output (auto-disabled when using --logfile)")
	cmd.PersistentFlags().BoolVar(&IgnoreProxy, "ignore-proxy", false, "Ignore HTTP_PROXY environment variable")
}

// SetupPersistentPreRun sets up the PersistentPreRun handler for logging initialization
func SetupPersistentPreRun(cmd *cobra.Command) {
	cmd.PersistentPreRun = func(c *cobra.Command, args []string) {
		InitLogger(c)
		SetGlobalLogLevel(c)
		httpclient.SetIgnoreProxy(IgnoreProxy)
		if term.IsTerminal(int(os.Stdin.Fd())) {
			go logging.ShortcutListeners(nil)
		}
	}
}

// Run executes the common startup sequence and runs the provided root command
func Run(rootCmd *cobra.Command) {
	SaveTerminalState()
	defer RestoreTerminalState()

	TerminalRestorer = RestoreTerminalState

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
