package modal

import (
	"encoding/json"
	"fmt"
)

// Kind tags the variant held by a State.
type Kind string

const (
	KindClosed Kind = "closed"
	KindCreate Kind = "create"
	KindEdit   Kind = "edit"
	KindDelete Kind = "delete"
)

// State is the modal state of one entity kind: Closed, Create, Edit(e) or
// Delete(e). Edit and Delete always carry the entity snapshot they act on.
// The zero value is Closed.
type State[E any] struct {
	kind   Kind
	entity E
}

func Closed[E any]() State[E]    { return State[E]{kind: KindClosed} }
func Create[E any]() State[E]    { return State[E]{kind: KindCreate} }
func Edit[E any](e E) State[E]   { return State[E]{kind: KindEdit, entity: e} }
func Delete[E any](e E) State[E] { return State[E]{kind: KindDelete, entity: e} }

func (s State[E]) Kind() Kind {
	if s.kind == "" {
		return KindClosed
	}
	return s.kind
}

func (s State[E]) IsOpen() bool { return s.Kind() != KindClosed }

// Entity returns the snapshot of an Edit or Delete state.
func (s State[E]) Entity() (E, bool) {
	switch s.Kind() {
	case KindEdit, KindDelete:
		return s.entity, true
	default:
		var zero E
		return zero, false
	}
}

// Cases holds one handler per variant; Match requires all of them.
type Cases[E, R any] struct {
	Closed func() R
	Create func() R
	Edit   func(E) R
	Delete func(E) R
}

// Match dispatches on the variant. A missing handler panics, so every call
// site has to handle all four states.
func Match[E, R any](s State[E], c Cases[E, R]) R {
	if c.Closed == nil || c.Create == nil || c.Edit == nil || c.Delete == nil {
		panic("modal: Match needs a handler for every state")
	}
	switch s.Kind() {
	case KindCreate:
		return c.Create()
	case KindEdit:
		return c.Edit(s.entity)
	case KindDelete:
		return c.Delete(s.entity)
	default:
		return c.Closed()
	}
}

type stateJSON[E any] struct {
	Kind   Kind `json:"kind"`
	Entity *E   `json:"entity"`
}

func (s State[E]) MarshalJSON() ([]byte, error) {
	out := stateJSON[E]{Kind: s.Kind()}
	if e, ok := s.Entity(); ok {
		out.Entity = &e
	}
	return json.Marshal(out)
}

func (s *State[E]) UnmarshalJSON(data []byte) error {
	var in stateJSON[E]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "", KindClosed:
		*s = Closed[E]()
	case KindCreate:
		*s = Create[E]()
	case KindEdit, KindDelete:
		if in.Entity == nil {
			return fmt.Errorf("modal state %q without entity", in.Kind)
		}
		*s = State[E]{kind: in.Kind, entity: *in.Entity}
	default:
		return fmt.Errorf("unknown modal state %q", in.Kind)
	}
	return nil
}
