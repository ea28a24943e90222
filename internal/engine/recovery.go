package engine

import (
	"errors"
	"fmt"

	"github.com/uwtopia/engine/internal/domain/session"
	"github.com/uwtopia/engine/internal/store"
)

// Recover restores a previously persisted session, if any, and reattaches
// the countdown from the persisted remaining seconds. Wall-clock time that
// passed while the process was down is not deducted. Recovered reports
// whether the UI should resume the in-progress quiz instead of showing home.
//
// A malformed blob is deleted and treated as "no session"; recovery never
// crashes the process. Question ids are not re-validated against the current
// catalog: the snapshot embeds full question copies, so a corpus update
// between runs cannot corrupt an in-flight session.
func (e *Engine) Recover() (recovered bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	blob, err := e.prefs.LoadSessionBlob()
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load session blob: %w", err)
	}

	sess, err := session.RestoreSnapshot(blob)
	if err != nil {
		e.logger.Warn("discarding corrupt session snapshot", "error", err)
		return false, e.discardBlobLocked()
	}
	if len(sess.Questions) == 0 || sess.Finished {
		return false, e.discardBlobLocked()
	}

	e.sess = sess
	e.startTimerLocked()
	return true, nil
}

func (e *Engine) discardBlobLocked() error {
	if err := e.prefs.DeleteSessionBlob(); err != nil {
		return fmt.Errorf("delete session blob: %w", err)
	}
	return nil
}
