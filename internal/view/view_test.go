package view

import (
	"errors"
	"testing"

	"github.com/bassista/room_desk/internal/cache"
	"github.com/bassista/room_desk/internal/form"
	"github.com/bassista/room_desk/internal/modal"
	"github.com/bassista/room_desk/internal/repository"
	"github.com/stretchr/testify/assert"
)

func TestNewPager(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		wantPages          int
		wantPrev, wantNext bool
		wantVisible        bool
	}{
		{"three pages, first", 1, 10, 25, 3, false, true, true},
		{"three pages, middle", 2, 10, 25, 3, true, true, true},
		{"three pages, last", 3, 10, 25, 3, true, false, true},
		{"exact fit", 1, 10, 10, 1, false, false, false},
		{"empty", 1, 10, 0, 0, false, false, false},
		{"past the end", 5, 10, 25, 3, true, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPager(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantVisible, p.Visible)
		})
	}
}

func TestNewList(t *testing.T) {
	ok := cache.Cached[repository.Page[repository.Room]]{
		Result: cache.Result{Status: cache.StatusSuccess},
		Value:  repository.Page[repository.Room]{Items: []repository.Room{{ID: 1}}, TotalCount: 25},
	}
	l := NewList(cache.ResourceRooms, 1, 10, ok)
	assert.Equal(t, cache.StatusSuccess, l.Status)
	assert.Len(t, l.Items, 1)
	assert.Equal(t, 3, l.Pager.TotalPages)
	assert.Empty(t, l.Error)

	failed := cache.Cached[repository.Page[repository.Room]]{
		Result: cache.Result{Status: cache.StatusError, Err: &repository.APIError{Status: 500, Detail: "Database unavailable"}},
	}
	l = NewList(cache.ResourceRooms, 1, 10, failed)
	assert.Equal(t, "Database unavailable", l.Error)
	assert.Empty(t, l.Items)
	assert.False(t, l.Pager.Visible)

	transport := cache.Cached[repository.Page[repository.Room]]{
		Result: cache.Result{Status: cache.StatusError, Err: errors.New("timeout")},
	}
	assert.Equal(t, repository.GenericErrorMessage, NewList(cache.ResourceRooms, 1, 10, transport).Error)

	loading := NewList(cache.ResourceRooms, 1, 10, cache.Cached[repository.Page[repository.Room]]{Result: cache.Result{Status: cache.StatusLoading}})
	assert.Equal(t, cache.StatusLoading, loading.Status)
	assert.NotNil(t, loading.Items)
}

func TestNewModal(t *testing.T) {
	closed := NewModal(modal.Session[repository.Room]{}, "room")
	assert.False(t, closed.Open)
	assert.Empty(t, closed.Title)
	assert.NotNil(t, closed.Values)

	edit := NewModal(modal.Session[repository.Room]{
		State:  modal.Edit(repository.Room{ID: 2}),
		Values: form.Values{"name": "Aurora"},
	}, "room")
	assert.True(t, edit.Open)
	assert.Equal(t, "Edit room", edit.Title)
	assert.Equal(t, 2, edit.Entity.ID)

	del := NewModal(modal.Session[repository.Booking]{State: modal.Delete(repository.Booking{ID: 1})}, "booking")
	assert.Equal(t, "Delete booking", del.Title)
}

func TestRoomOptions(t *testing.T) {
	opts := RoomOptions([]repository.Room{{ID: 1, Name: "Aurora", Capacity: 8}})
	assert.Equal(t, []RoomOption{{ID: 1, Name: "Aurora", Capacity: 8}}, opts)
	assert.NotNil(t, RoomOptions(nil))
}
