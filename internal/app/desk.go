package app

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// call performs a backend request and returns the state update to apply
// when it succeeds.
type call func(ctx context.Context) (apply func(), err error)

// desk is the shared core of every dashboard panel: one notice, one gate,
// and a reset epoch that discards responses arriving after logout.
type desk struct {
	auth Authorizer
	msgs Messages
	log  *zap.Logger
	gate *Gate

	mu     sync.Mutex
	epoch  uint64
	notice Notice
}

func newDesk(auth Authorizer, msgs Messages, log *zap.Logger, name string) *desk {
	return &desk{auth: auth, msgs: msgs, log: log.Named(name), gate: NewGate()}
}

// run executes c under the gate for key. The notice is cleared when the
// action starts and set from the error when it fails. The apply func runs
// with mu held and only while the panel is still the one that started the
// action; a reset in between drops both the update and any notice.
func (d *desk) run(ctx context.Context, key string, fallback MessageKey, c call) error {
	done, err := d.gate.Begin(key)
	if err != nil {
		return err
	}
	defer done()
	return d.exec(ctx, key, fallback, c)
}

// exec is run for callers that already hold the gate for key.
func (d *desk) exec(ctx context.Context, key string, fallback MessageKey, c call) error {
	d.mu.Lock()
	gen := d.epoch
	d.notice = Notice{}
	d.mu.Unlock()

	var apply func()
	err := d.auth.Authorized(ctx, func(ctx context.Context) error {
		a, err := c(ctx)
		apply = a
		return err
	})

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.epoch != gen {
		return err
	}
	if err != nil {
		d.log.Warn("action failed", zap.String("action", key), zap.Error(err))
		d.notice = errorNotice(d.msgs.ForError(err, fallback))
		return err
	}
	if apply != nil {
		apply()
	}
	return nil
}

// fail records a client-side failure that never reached the backend.
func (d *desk) fail(err error, fallback MessageKey) error {
	d.mu.Lock()
	d.notice = errorNotice(d.msgs.ForError(err, fallback))
	d.mu.Unlock()
	return err
}

// succeed sets the success notice. Callers hold mu, which is the case
// inside an apply func.
func (d *desk) succeed(key MessageKey, args ...any) {
	d.notice = successNotice(d.msgs.Text(key, args...))
}

// succeedWith prefers the server's text over the catalog fallback. Callers
// hold mu.
func (d *desk) succeedWith(text string, fallback MessageKey) {
	if text == "" {
		text = d.msgs.Text(fallback)
	}
	d.notice = successNotice(text)
}

// generation returns the current reset epoch.
func (d *desk) generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.epoch
}

// reset drops the panel's state and invalidates in-flight responses.
func (d *desk) reset(clear func()) {
	d.mu.Lock()
	d.epoch++
	d.notice = Notice{}
	clear()
	d.mu.Unlock()
}

// Notice returns the panel's inline message.
func (d *desk) Notice() Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notice
}

// Dismiss clears the panel's inline message.
func (d *desk) Dismiss() {
	d.mu.Lock()
	d.notice = Notice{}
	d.mu.Unlock()
}

// Busy reports whether the action key is in flight.
func (d *desk) Busy(key string) bool { return d.gate.Busy(key) }
