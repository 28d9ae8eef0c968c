package engine

import (
	"time"

	"workstream/pkg/models"
	"workstream/pkg/scheduler"
	"workstream/pkg/state"
)

// Mailer delivers password-reset codes. Email transport is an external
// collaborator; tests supply a capture implementation.
type Mailer interface {
	Send(to, subject, body string) error
}

type nopMailer struct{}

func (nopMailer) Send(string, string, string) error { return nil }

// Engine implements every workspace operation as one critical section over
// the shared snapshot: read, validate, mutate, persist. The locator index is
// mutated only inside those sections, so the state lock covers it too.
type Engine struct {
	st     *state.Store
	sched  *scheduler.Scheduler
	loc    *locator
	secret []byte
	mailer Mailer

	// now is split so tests can pin the clock.
	now func() int64
}

// New builds an Engine over an opened state store and rebuilds the message
// locator from the loaded snapshot.
func New(st *state.Store, sched *scheduler.Scheduler, tokenSecret string, mailer Mailer) *Engine {
	if mailer == nil {
		mailer = nopMailer{}
	}
	e := &Engine{
		st:     st,
		sched:  sched,
		loc:    newLocator(),
		secret: []byte(tokenSecret),
		mailer: mailer,
		now:    func() int64 { return time.Now().UTC().Unix() },
	}
	_ = st.View(func(snap *models.Snapshot) error {
		e.loc.rebuild(snap)
		return nil
	})
	return e
}
