package view

import (
	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
)

// Pager describes the pagination controls of a list.
type Pager struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
	Visible    bool `json:"visible"`
	PrevPage   int  `json:"prev_page"`
	NextPage   int  `json:"next_page"`
}

// NewPager computes the controls for page of limit over total items.
func NewPager(page, limit, total int) Pager {
	p := Pager{Page: page, Limit: limit, TotalCount: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	p.HasPrev = page > 1
	p.HasNext = page < p.TotalPages
	p.Visible = p.TotalPages > 1
	p.PrevPage = page - 1
	p.NextPage = page + 1
	return p
}

// List is the view model of a paginated list.
type List[T any] struct {
	Resource cache.Resource `json:"resource"`
	Status   cache.Status   `json:"status"`
	Error    string         `json:"error,omitempty"`
	Items    []T            `json:"items"`
	Pager    Pager          `json:"pager"`
}

// NewList builds the list view model of a cached page. On failure the page
// carries an error message in place of items.
func NewList[T any](resource cache.Resource, page, limit int, res cache.Cached[repository.Page[T]]) List[T] {
	l := List[T]{Resource: resource, Status: res.Status, Items: []T{}}
	switch res.Status {
	case cache.StatusSuccess:
		if res.Value.Items != nil {
			l.Items = res.Value.Items
		}
		l.Pager = NewPager(page, limit, res.Value.TotalCount)
	case cache.StatusError:
		l.Error = repository.DetailMessage(res.Err)
		l.Pager = NewPager(page, limit, 0)
	default:
		l.Pager = NewPager(page, limit, 0)
	}
	return l
}

// Modal is the view model of a modal session.
type Modal[E any] struct {
	State         modal.State[E] `json:"state"`
	Open          bool           `json:"open"`
	Title         string         `json:"title"`
	Values        form.Values    `json:"values"`
	Errors        form.Errors    `json:"errors"`
	Warnings      form.Warnings  `json:"warnings"`
	MutationError string         `json:"mutation_error,omitempty"`
	Pending       bool           `json:"pending"`

	// Entity is the Edit or Delete snapshot, for templates.
	Entity E `json:"-"`
}

// NewModal builds the modal view model; noun names the entity, e.g. "room".
func NewModal[E any](s modal.Session[E], noun string) Modal[E] {
	title := modal.Match(s.State, modal.Cases[E, string]{
		Closed: func() string { return "" },
		Create: func() string { return "New " + noun },
		Edit:   func(E) string { return "Edit " + noun },
		Delete: func(E) string { return "Delete " + noun },
	})
	m := Modal[E]{
		State:         s.State,
		Open:          s.State.IsOpen(),
		Title:         title,
		Values:        s.Values,
		Errors:        s.Errors,
		Warnings:      s.Warnings,
		MutationError: s.MutationError,
		Pending:       s.Pending,
	}
	m.Entity, _ = s.State.Entity()
	if m.Values == nil {
		m.Values = form.Values{}
	}
	if m.Errors == nil {
		m.Errors = form.Errors{}
	}
	if m.Warnings == nil {
		m.Warnings = form.Warnings{}
	}
	return m
}

// RoomOption is one entry of the booking form's room select.
type RoomOption struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func RoomOptions(rooms []repository.Room) []RoomOption {
	out := make([]RoomOption, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomOption{ID: r.ID, Name: r.Name, Capacity: r.Capacity})
	}
	return out
}
