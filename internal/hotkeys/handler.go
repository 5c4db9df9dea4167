// Package hotkeys binds global X11 key sequences to desktop actions.
package hotkeys

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/rs/zerolog"

	"github.com/1broseidon/deskshell/internal/desktop"
)

// Dispatcher runs fn on the goroutine that owns the desktop.
type Dispatcher interface {
	Do(ctx context.Context, fn func(*desktop.Desktop)) error
}

// Handler delivers key presses on the root window to a Dispatcher. Events
// are read by the xevent main loop, so something must be running xevent.Main
// on the same connection.
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	desk   Dispatcher
	logger zerolog.Logger
}

var initOnce sync.Once

// NewHandler prepares keybind for xu and returns a handler that forwards to
// desk.
func NewHandler(xu *xgbutil.XUtil, desk Dispatcher, logger zerolog.Logger) *Handler {
	initOnce.Do(func() {
		keybind.Initialize(xu)
		configureIgnoreMods(xu)
	})
	return &Handler{
		xu:     xu,
		root:   xu.RootWin(),
		desk:   desk,
		logger: logger,
	}
}

// RegisterAll grabs every binding. It stops at the first failure, which is
// usually another client already holding the key.
func (h *Handler) RegisterAll(bindings []Binding) error {
	for _, b := range bindings {
		if err := h.Register(b); err != nil {
			return err
		}
		h.logger.Debug().Str("keys", b.Keys).Stringer("action", b).Msg("hotkey registered")
	}
	return nil
}

// Register grabs a single binding.
func (h *Handler) Register(b Binding) error {
	err := h.RegisterFunc(b.Keys, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		err := h.desk.Do(ctx, func(d *desktop.Desktop) {
			Apply(d, b)
		})
		if err != nil {
			h.logger.Warn().Err(err).Stringer("action", b).Msg("hotkey action failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register %s hotkey %q: %w", b, b.Keys, err)
	}
	return nil
}

// RegisterFunc grabs keySequence and calls callback on each press.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(_ *xgbutil.XUtil, _ xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Unregister releases every grab the handler made on the root window.
func (h *Handler) Unregister() {
	keybind.Detach(h.xu, h.root)
}

// configureIgnoreMods lets hotkeys fire with CapsLock, NumLock or ScrollLock
// held in any combination.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	locks := []uint16{uint16(xproto.ModMaskLock)}
	for _, sym := range []string{"Num_Lock", "Scroll_Lock"} {
		mask := modMaskForKeysym(xu, sym)
		if mask == 0 {
			continue
		}
		dup := false
		for _, m := range locks {
			dup = dup || m == mask
		}
		if !dup {
			locks = append(locks, mask)
		}
	}
	xevent.IgnoreMods = lockCombinations(locks)
}

// lockCombinations returns every OR of a subset of masks, including 0.
func lockCombinations(masks []uint16) []uint16 {
	out := make([]uint16, 0, 1<<len(masks))
	for subset := 0; subset < 1<<len(masks); subset++ {
		var mask uint16
		for bit, m := range masks {
			if subset&(1<<bit) != 0 {
				mask |= m
			}
		}
		out = append(out, mask)
	}
	return out
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
