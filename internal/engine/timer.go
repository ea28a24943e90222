package engine

import "time"

// The countdown timer runs in its own goroutine but funnels every tick
// through the engine mutex, so a tick can never interleave with a command.
// The tick source is stopped whenever the session finishes, is abandoned, or
// the process tears down; it must never outlive its session.

func (e *Engine) startTimerLocked() {
	if e.sess == nil || e.sess.TimerRemaining == nil || *e.sess.TimerRemaining <= 0 {
		return
	}
	stop := make(chan struct{})
	e.timerStop = stop
	go e.runTimer(stop)
}

func (e *Engine) stopTimerLocked() {
	if e.timerStop != nil {
		close(e.timerStop)
		e.timerStop = nil
	}
}

func (e *Engine) runTimer(stop chan struct{}) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if e.tick() {
				return
			}
		}
	}
}

// tick decrements the remaining seconds and persists the session. At zero it
// finishes the session exactly once; whatever was locked stays locked and
// unanswered questions stay unanswered (no auto-submission). Returns true
// when the goroutine should exit.
func (e *Engine) tick() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A tick racing Finish or ClearSession is a no-op.
	if e.sess == nil || e.sess.Finished || e.sess.TimerRemaining == nil {
		return true
	}

	*e.sess.TimerRemaining--
	if *e.sess.TimerRemaining <= 0 {
		*e.sess.TimerRemaining = 0
		if err := e.finishLocked(); err != nil {
			e.logger.Error("timer finish failed", "error", err)
		}
		return true
	}

	if err := e.persistLocked(); err != nil {
		e.logger.Error("timer tick persist failed", "error", err)
	}
	return false
}
