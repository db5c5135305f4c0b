package logging

import (
	"sync"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ShortcutStatusFN func() *zerolog.Event

var (
	statusHookMutex sync.RWMutex
	statusHook      ShortcutStatusFN
	interruptHook   func()
)

var shortcutLevels = map[string]zerolog.Level{
	"t": zerolog.TraceLevel,
	"d": zerolog.DebugLevel,
	"i": zerolog.InfoLevel,
	"w": zerolog.WarnLevel,
	"e": zerolog.ErrorLevel,
}

// RegisterStatusHook sets the function printed by the "s" shortcut. Pass nil to reset it.
func RegisterStatusHook(hook ShortcutStatusFN) {
	statusHookMutex.Lock()
	defer statusHookMutex.Unlock()
	statusHook = hook
}

// RegisterInterruptHook sets the function called when Ctrl+C is pressed while
// the keyboard is captured, as no SIGINT is delivered in that case.
func RegisterInterruptHook(hook func()) {
	statusHookMutex.Lock()
	defer statusHookMutex.Unlock()
	interruptHook = hook
}

func interrupt() {
	statusHookMutex.RLock()
	hook := interruptHook
	statusHookMutex.RUnlock()
	if hook != nil {
		hook()
	}
}

func GetStatusHook() ShortcutStatusFN {
	statusHookMutex.RLock()
	defer statusHookMutex.RUnlock()
	if statusHook != nil {
		return statusHook
	}
	return defaultStatusHook
}

func defaultStatusHook() *zerolog.Event {
	return log.Info().Str("status", "nothing to show")
}

// HandleShortcut applies a single key press and reports whether it was a known shortcut.
func HandleShortcut(key string) bool {
	if level, ok := shortcutLevels[key]; ok {
		zerolog.SetGlobalLevel(level)
		log.Info().Str("logLevel", level.String()).Msg("New Log level")
		return true
	}

	if key == "s" {
		GetStatusHook()().Msg("Status")
		return true
	}
	return false
}

// ShortcutListeners blocks and handles key presses until Ctrl+C or Escape.
func ShortcutListeners(status ShortcutStatusFN) {
	if status != nil {
		RegisterStatusHook(status)
	}

	err := keyboard.Listen(func(key keys.Key) (stop bool, err error) {
		switch key.Code {
		case keys.CtrlC:
			interrupt()
			return true, nil
		case keys.Escape:
			return true, nil
		case keys.RuneKey:
			HandleShortcut(key.String())
		}
		return false, nil
	})

	if err != nil {
		log.Debug().Err(err).Msg("Failed hooking keyboard bindings")
	}
}
