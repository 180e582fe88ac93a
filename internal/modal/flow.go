package modal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/logger"
	"github.com/bassista/room_desk/internal/repository"
)

var (
	ErrInvalidTransition = errors.New("invalid modal transition")
	ErrPending           = errors.New("a mutation is already in progress")
	ErrInvalid           = errors.New("form has field errors")
	ErrMutationFailed    = errors.New("mutation failed")
)

// Session is one browser session's modal for one entity kind.
type Session[E any] struct {
	State         State[E]      `json:"state"`
	Values        form.Values   `json:"values"`
	Errors        form.Errors   `json:"errors"`
	Warnings      form.Warnings `json:"warnings"`
	MutationError string        `json:"mutation_error"`
	Pending       bool          `json:"pending"`
	PendingSince  time.Time     `json:"pending_since"`
	Seq           uint64        `json:"seq"`
}

func (s *Session[E]) reset(state State[E], values form.Values) {
	s.State = state
	s.Values = values
	s.Errors = form.Errors{}
	s.Warnings = form.Warnings{}
	s.MutationError = ""
	s.Pending = false
	s.PendingSince = time.Time{}
	s.Seq++
}

// Schema supplies the form side of a flow.
type Schema[E, P any] interface {
	Fields() []string
	Defaults() form.Values
	Project(e E) form.Values
	Validate(values form.Values) (P, form.Errors)
}

// Mutator performs gateway calls for a flow.
type Mutator[E, P any] interface {
	Create(ctx context.Context, payload P) (E, error)
	Update(ctx context.Context, id int, payload P) (E, error)
	Delete(ctx context.Context, id int) (E, error)
}

// Mutation is a validated, pending gateway call bound to a modal session.
type Mutation[P any] struct {
	Kind    Kind
	Seq     uint64
	ID      int
	Payload P
}

// DefaultPendingLease bounds how long a pending flag blocks the session when
// its outcome was never recorded.
const DefaultPendingLease = 2 * time.Minute

// Flow binds an entity kind to its schema, gateway calls and cache keys.
type Flow[E, P any] struct {
	Name    string
	Schema  Schema[E, P]
	Mutator Mutator[E, P]
	ID      func(E) int
	Cache   cache.Invalidator
	// Invalidates lists the cached resources a successful mutation of the
	// given kind makes stale.
	Invalidates func(k Kind) []cache.Resource

	// Warn computes soft warnings for form values; optional.
	Warn func(values form.Values) form.Warnings
	// DeleteWarn computes warnings shown in the delete confirmation; optional.
	DeleteWarn func(e E) form.Warnings

	// PendingLease defaults to DefaultPendingLease.
	PendingLease time.Duration
	Now          func() time.Time
}

func (f *Flow[E, P]) log() string { return f.Name + "-modal" }

func (f *Flow[E, P]) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// busy reports whether a mutation is in flight. A pending flag older than the
// lease belongs to a submit whose outcome was lost, and is cleared.
func (f *Flow[E, P]) busy(s *Session[E]) bool {
	if !s.Pending {
		return false
	}
	lease := f.PendingLease
	if lease <= 0 {
		lease = DefaultPendingLease
	}
	if f.now().Sub(s.PendingSince) < lease {
		return true
	}
	logger.WithComponent(f.log()).Warnf("clearing pending flag set at %s (seq %d)", s.PendingSince.Format(time.RFC3339), s.Seq)
	s.Pending = false
	s.PendingSince = time.Time{}
	return false
}

func (f *Flow[E, P]) warn(values form.Values) form.Warnings {
	if f.Warn == nil {
		return form.Warnings{}
	}
	return f.Warn(values)
}

func (f *Flow[E, P]) open(s *Session[E], state State[E], values form.Values) error {
	if s.State.IsOpen() {
		return fmt.Errorf("open %s while %s: %w", state.Kind(), s.State.Kind(), ErrInvalidTransition)
	}
	s.reset(state, values)
	logger.WithComponent(f.log()).Debugf("opened %s (seq %d)", state.Kind(), s.Seq)
	return nil
}

// OpenCreate moves Closed → Create with default values.
func (f *Flow[E, P]) OpenCreate(s *Session[E]) error {
	values := f.Schema.Defaults()
	if err := f.open(s, Create[E](), values); err != nil {
		return err
	}
	s.Warnings = f.warn(values)
	return nil
}

// OpenEdit moves Closed → Edit(e) with the projection of e.
func (f *Flow[E, P]) OpenEdit(s *Session[E], e E) error {
	values := f.Schema.Project(e)
	if err := f.open(s, Edit(e), values); err != nil {
		return err
	}
	s.Warnings = f.warn(values)
	return nil
}

// OpenDelete moves Closed → Delete(e).
func (f *Flow[E, P]) OpenDelete(s *Session[E], e E) error {
	if err := f.open(s, Delete(e), form.Values{}); err != nil {
		return err
	}
	if f.DeleteWarn != nil {
		s.Warnings = f.DeleteWarn(e)
	}
	return nil
}

// Change merges field edits into the form and re-validates it.
func (f *Flow[E, P]) Change(s *Session[E], changes form.Values) (form.Errors, error) {
	switch s.State.Kind() {
	case KindCreate, KindEdit:
	default:
		return nil, fmt.Errorf("change form while %s: %w", s.State.Kind(), ErrInvalidTransition)
	}
	if f.busy(s) {
		return nil, ErrPending
	}
	s.Values = s.Values.Merge(changes, f.Schema.Fields())
	_, errs := f.Schema.Validate(s.Values)
	s.Errors = errs
	s.Warnings = f.warn(s.Values)
	return errs, nil
}

// Cancel closes the modal unless a mutation is in flight.
func (f *Flow[E, P]) Cancel(s *Session[E]) error {
	if f.busy(s) {
		return ErrPending
	}
	if !s.State.IsOpen() {
		return nil
	}
	s.reset(Closed[E](), nil)
	logger.WithComponent(f.log()).Debugf("cancelled (seq %d)", s.Seq)
	return nil
}

// Prepare validates the form and marks the session pending. Field errors
// block the submit before any network call.
func (f *Flow[E, P]) Prepare(s *Session[E]) (Mutation[P], error) {
	if f.busy(s) {
		return Mutation[P]{}, ErrPending
	}

	m := Mutation[P]{Kind: s.State.Kind(), Seq: s.Seq}
	err := Match(s.State, Cases[E, error]{
		Closed: func() error {
			return fmt.Errorf("submit while closed: %w", ErrInvalidTransition)
		},
		Create: func() error {
			return f.validate(s, &m)
		},
		Edit: func(e E) error {
			m.ID = f.ID(e)
			return f.validate(s, &m)
		},
		Delete: func(e E) error {
			m.ID = f.ID(e)
			return nil
		},
	})
	if err != nil {
		return Mutation[P]{}, err
	}

	s.Pending = true
	s.PendingSince = f.now()
	s.MutationError = ""
	return m, nil
}

func (f *Flow[E, P]) validate(s *Session[E], m *Mutation[P]) error {
	payload, errs := f.Schema.Validate(s.Values)
	s.Errors = errs
	if len(errs) > 0 {
		return ErrInvalid
	}
	m.Payload = payload
	return nil
}

// Run performs the gateway call of a prepared mutation.
func (f *Flow[E, P]) Run(ctx context.Context, m Mutation[P]) (E, error) {
	switch m.Kind {
	case KindCreate:
		return f.Mutator.Create(ctx, m.Payload)
	case KindEdit:
		return f.Mutator.Update(ctx, m.ID, m.Payload)
	case KindDelete:
		return f.Mutator.Delete(ctx, m.ID)
	default:
		var zero E
		return zero, fmt.Errorf("run %s mutation: %w", m.Kind, ErrInvalidTransition)
	}
}

func (f *Flow[E, P]) invalidate(k Kind) {
	for _, res := range f.Invalidates(k) {
		f.Cache.Invalidate(res)
	}
}

// Complete applies a mutation outcome to the session. Success closes the
// modal; failure keeps it open with the backend's detail. An outcome for an
// older session is dropped.
func (f *Flow[E, P]) Complete(s *Session[E], m Mutation[P], err error) {
	current := s.Seq == m.Seq

	if err == nil {
		if current {
			s.reset(Closed[E](), nil)
		}
		logger.WithComponent(f.log()).Infof("%s succeeded", m.Kind)
		return
	}

	logger.WithComponent(f.log()).Warnf("%s failed: %v", m.Kind, err)
	if !current {
		return
	}
	s.Pending = false
	s.PendingSince = time.Time{}
	s.MutationError = repository.DetailMessage(err)
}

// Submit prepares, runs and completes a mutation. update must serialise access
// to the session; the gateway call runs between two update calls so the
// session is not held during network I/O. A successful gateway call
// invalidates the cached lists before the outcome is recorded, so a session
// store failure cannot keep stale pages around. Recording is retried once; if
// it still fails the pending flag expires after the lease. A failed gateway
// call is returned wrapped in ErrMutationFailed.
func (f *Flow[E, P]) Submit(ctx context.Context, update func(fn func(s *Session[E]) error) error) error {
	var m Mutation[P]
	if err := update(func(s *Session[E]) error {
		var err error
		m, err = f.Prepare(s)
		return err
	}); err != nil {
		return err
	}

	_, runErr := f.Run(ctx, m)
	if runErr == nil {
		f.invalidate(m.Kind)
	}

	complete := func(s *Session[E]) error {
		f.Complete(s, m, runErr)
		return nil
	}
	if err := update(complete); err != nil {
		logger.WithComponent(f.log()).Warnf("record %s outcome: %v, retrying", m.Kind, err)
		if err := update(complete); err != nil {
			return fmt.Errorf("record %s outcome: %w", m.Kind, err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("%w: %w", ErrMutationFailed, runErr)
	}
	return nil
}
