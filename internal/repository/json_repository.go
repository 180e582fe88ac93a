package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bassista/room_desk/internal/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
)

// Metadata holds versioning info and id sequences of the data file.
type Metadata struct {
	LastUpdate    int64 `json:"lastUpdate"` // Unix timestamp in milliseconds
	NextRoomID    int   `json:"nextRoomId"`
	NextBookingID int   `json:"nextBookingId"`
}

// DataDocument represents the persisted JSON structure of the file backend.
type DataDocument struct {
	Metadata Metadata        `json:"metadata"`
	Rooms    []storedRoom    `json:"rooms" validate:"dive"`
	Bookings []storedBooking `json:"bookings" validate:"dive"`
}

type storedRoom struct {
	ID        int    `json:"id" validate:"gt=0"`
	Name      string `json:"name" validate:"required"`
	Local     string `json:"local" validate:"required"`
	Capacity  int    `json:"capacity" validate:"gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type storedBooking struct {
	ID                int     `json:"id" validate:"gt=0"`
	ResponsibleName   string  `json:"responsible_name" validate:"required"`
	Attendees         int     `json:"attendees" validate:"gt=0"`
	RoomID            int     `json:"room_id" validate:"gt=0"`
	StartTime         string  `json:"start_time" validate:"required"`
	EndTime           string  `json:"end_time" validate:"required"`
	HasCoffee         bool    `json:"has_coffee"`
	CoffeeDescription *string `json:"coffee_description"`
}

// JSONRepository is a development backend that keeps rooms and bookings in a
// JSON file and answers like the REST backend does, detail messages included.
type JSONRepository struct {
	path      string
	dir       string
	base      string
	validator *validator.Validate

	mu  sync.Mutex
	doc DataDocument
}

// NewJSONRepository opens (or creates) the data file at path.
func NewJSONRepository(path string) (*JSONRepository, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}

	dir := filepath.Dir(path)
	if dir == "" {
		dir = "."
	}
	r := &JSONRepository{
		path:      path,
		dir:       dir,
		base:      filepath.Base(path),
		validator: validator.New(),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.saveUnlocked(&DataDocument{}); err != nil {
			return nil, err
		}
	}

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	r.doc = *doc
	return r, nil
}

// load reads the JSON file, parses and validates it.
func (r *JSONRepository) load() (*DataDocument, error) {
	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	var doc DataDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	doc.applyDefaults()

	if err := r.validator.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate data file: %w", err)
	}
	return &doc, nil
}

func (d *DataDocument) applyDefaults() {
	if d.Rooms == nil {
		d.Rooms = []storedRoom{}
	}
	if d.Bookings == nil {
		d.Bookings = []storedBooking{}
	}
	for _, room := range d.Rooms {
		if room.ID >= d.Metadata.NextRoomID {
			d.Metadata.NextRoomID = room.ID + 1
		}
	}
	for _, b := range d.Bookings {
		if b.ID >= d.Metadata.NextBookingID {
			d.Metadata.NextBookingID = b.ID + 1
		}
	}
	if d.Metadata.NextRoomID == 0 {
		d.Metadata.NextRoomID = 1
	}
	if d.Metadata.NextBookingID == 0 {
		d.Metadata.NextBookingID = 1
	}
}

// saveUnlocked writes the document atomically (caller must hold the lock).
func (r *JSONRepository) saveUnlocked(doc *DataDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	tmpFile, err := os.CreateTemp(r.dir, r.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), r.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// mutate applies fn to a copy of the document and commits it only if fn and
// the save both succeed.
func (r *JSONRepository) mutate(fn func(doc *DataDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := cloneDocument(r.doc)
	if err != nil {
		return err
	}
	if err := fn(&next); err != nil {
		return err
	}
	next.Metadata.LastUpdate = time.Now().UnixMilli()
	if err := r.saveUnlocked(&next); err != nil {
		return err
	}
	r.doc = next
	return nil
}

func cloneDocument(doc DataDocument) (DataDocument, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return DataDocument{}, err
	}
	var out DataDocument
	if err := json.Unmarshal(raw, &out); err != nil {
		return DataDocument{}, err
	}
	return out, nil
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 || limit < 1 {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return append([]T{}, items[start:end]...)
}

func (d *DataDocument) roomIndex(id int) int {
	for i := range d.Rooms {
		if d.Rooms[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *DataDocument) bookingIndex(id int) int {
	for i := range d.Bookings {
		if d.Bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *DataDocument) toBooking(b storedBooking) Booking {
	ref := RoomRef{ID: b.RoomID}
	if i := d.roomIndex(b.RoomID); i >= 0 {
		ref.Name = d.Rooms[i].Name
	}
	return Booking{
		ID:                b.ID,
		ResponsibleName:   b.ResponsibleName,
		Attendees:         b.Attendees,
		StartTime:         b.StartTime,
		EndTime:           b.EndTime,
		HasCoffee:         b.HasCoffee,
		CoffeeDescription: b.CoffeeDescription,
		Room:              ref,
	}
}

func (s storedRoom) toRoom() Room {
	return Room(s)
}

func errRoomNotFound() error    { return newAPIError(http.StatusNotFound, "Room not found") }
func errBookingNotFound() error { return newAPIError(http.StatusNotFound, "Booking not found") }

func (r *JSONRepository) ListRooms(ctx context.Context, page, limit int) (Page[Room], error) {
	if err := ctx.Err(); err != nil {
		return Page[Room]{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]Room, 0, len(r.doc.Rooms))
	for _, s := range r.doc.Rooms {
		rooms = append(rooms, s.toRoom())
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return Page[Room]{Items: paginate(rooms, page, limit), TotalCount: len(rooms)}, nil
}

func (r *JSONRepository) GetRoom(ctx context.Context, id int) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.doc.roomIndex(id)
	if i < 0 {
		return Room{}, errRoomNotFound()
	}
	return r.doc.Rooms[i].toRoom(), nil
}

func (r *JSONRepository) CreateRoom(ctx context.Context, room RoomCreate) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	var created Room
	err := r.mutate(func(doc *DataDocument) error {
		stored := storedRoom{
			ID:        doc.Metadata.NextRoomID,
			Name:      room.Name,
			Local:     room.Local,
			Capacity:  room.Capacity,
			StartTime: room.StartTime,
			EndTime:   room.EndTime,
		}
		if err := checkRoom(stored); err != nil {
			return err
		}
		doc.Metadata.NextRoomID++
		doc.Rooms = append(doc.Rooms, stored)
		created = stored.toRoom()
		return nil
	})
	return created, err
}

func (r *JSONRepository) UpdateRoom(ctx context.Context, id int, patch RoomUpdate) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	var updated Room
	err := r.mutate(func(doc *DataDocument) error {
		i := doc.roomIndex(id)
		if i < 0 {
			return errRoomNotFound()
		}
		stored := doc.Rooms[i]
		if patch.Name != nil {
			stored.Name = *patch.Name
		}
		if patch.Local != nil {
			stored.Local = *patch.Local
		}
		if patch.Capacity != nil {
			stored.Capacity = *patch.Capacity
		}
		if patch.StartTime != nil {
			stored.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			stored.EndTime = *patch.EndTime
		}
		if err := checkRoom(stored); err != nil {
			return err
		}
		doc.Rooms[i] = stored
		updated = stored.toRoom()
		return nil
	})
	return updated, err
}

// DeleteRoom refuses to orphan bookings.
func (r *JSONRepository) DeleteRoom(ctx context.Context, id int) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	var deleted Room
	err := r.mutate(func(doc *DataDocument) error {
		i := doc.roomIndex(id)
		if i < 0 {
			return errRoomNotFound()
		}
		for _, b := range doc.Bookings {
			if b.RoomID == id {
				return newAPIError(http.StatusConflict, "Room has bookings and cannot be deleted")
			}
		}
		deleted = doc.Rooms[i].toRoom()
		doc.Rooms = append(doc.Rooms[:i], doc.Rooms[i+1:]...)
		return nil
	})
	return deleted, err
}

func (r *JSONRepository) ListBookings(ctx context.Context, page, limit int) (Page[Booking], error) {
	if err := ctx.Err(); err != nil {
		return Page[Booking]{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	bookings := make([]Booking, 0, len(r.doc.Bookings))
	for _, b := range r.doc.Bookings {
		bookings = append(bookings, r.doc.toBooking(b))
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return Page[Booking]{Items: paginate(bookings, page, limit), TotalCount: len(bookings)}, nil
}

func (r *JSONRepository) GetBooking(ctx context.Context, id int) (Booking, error) {
	if err := ctx.Err(); err != nil {
		return Booking{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.doc.bookingIndex(id)
	if i < 0 {
		return Booking{}, errBookingNotFound()
	}
	return r.doc.toBooking(r.doc.Bookings[i]), nil
}

func (r *JSONRepository) CreateBooking(ctx context.Context, booking BookingCreate) (Booking, error) {
	if err := ctx.Err(); err != nil {
		return Booking{}, err
	}
	var created Booking
	err := r.mutate(func(doc *DataDocument) error {
		stored := storedBooking{
			ID:                doc.Metadata.NextBookingID,
			ResponsibleName:   booking.ResponsibleName,
			Attendees:         booking.Attendees,
			RoomID:            booking.RoomID,
			StartTime:         booking.StartTime,
			EndTime:           booking.EndTime,
			HasCoffee:         booking.HasCoffee,
			CoffeeDescription: booking.CoffeeDescription,
		}
		if err := doc.checkBooking(stored); err != nil {
			return err
		}
		doc.Metadata.NextBookingID++
		doc.Bookings = append(doc.Bookings, stored)
		created = doc.toBooking(stored)
		return nil
	})
	return created, err
}

func (r *JSONRepository) UpdateBooking(ctx context.Context, id int, patch BookingUpdate) (Booking, error) {
	if err := ctx.Err(); err != nil {
		return Booking{}, err
	}
	var updated Booking
	err := r.mutate(func(doc *DataDocument) error {
		i := doc.bookingIndex(id)
		if i < 0 {
			return errBookingNotFound()
		}
		stored := doc.Bookings[i]
		if patch.ResponsibleName != nil {
			stored.ResponsibleName = *patch.ResponsibleName
		}
		if patch.Attendees != nil {
			stored.Attendees = *patch.Attendees
		}
		if patch.RoomID != nil {
			stored.RoomID = *patch.RoomID
		}
		if patch.StartTime != nil {
			stored.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			stored.EndTime = *patch.EndTime
		}
		if patch.HasCoffee != nil {
			stored.HasCoffee = *patch.HasCoffee
		}
		if patch.CoffeeDescription.Set {
			stored.CoffeeDescription = patch.CoffeeDescription.Value
		}
		if err := doc.checkBooking(stored); err != nil {
			return err
		}
		doc.Bookings[i] = stored
		updated = doc.toBooking(stored)
		return nil
	})
	return updated, err
}

func (r *JSONRepository) DeleteBooking(ctx context.Context, id int) (Booking, error) {
	if err := ctx.Err(); err != nil {
		return Booking{}, err
	}
	var deleted Booking
	err := r.mutate(func(doc *DataDocument) error {
		i := doc.bookingIndex(id)
		if i < 0 {
			return errBookingNotFound()
		}
		deleted = doc.toBooking(doc.Bookings[i])
		doc.Bookings = append(doc.Bookings[:i], doc.Bookings[i+1:]...)
		return nil
	})
	return deleted, err
}

// StartWatcher listens for external edits of the data file and calls onChange
// once the in-memory copy has been replaced by the newer disk version.
// It watches the parent directory so atomic temp+rename replaces are seen, and
// debounces bursts of events into a single reload. Cancel ctx to stop it.
func (r *JSONRepository) StartWatcher(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	reload := func() {
		if r.reloadIfNewer() && onChange != nil {
			onChange()
		}
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, reload)
		}

		for {
			select {
			case <-ctx.Done():
				if debounce != nil {
					debounce.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != r.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithComponent("json-repo").Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// reloadIfNewer swaps in the disk document when it was written by someone else.
// Our own saves share LastUpdate with memory and are skipped.
func (r *JSONRepository) reloadIfNewer() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	diskDoc, err := r.load()
	if err != nil {
		logger.WithComponent("json-repo").Warnf("watch reload failed: %v", err)
		return false
	}
	if diskDoc.Metadata.LastUpdate < r.doc.Metadata.LastUpdate {
		logger.WithComponent("json-repo").Debugf("disk version is older than memory: disk=%d memory=%d", diskDoc.Metadata.LastUpdate, r.doc.Metadata.LastUpdate)
		return false
	}
	if diskDoc.Metadata.LastUpdate == r.doc.Metadata.LastUpdate && sameDocument(diskDoc, &r.doc) {
		return false
	}
	r.doc = *diskDoc
	logger.WithComponent("json-repo").Info("data reloaded from newer disk version")
	return true
}

func sameDocument(a, b *DataDocument) bool {
	aBytes, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bBytes, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(aBytes) == string(bBytes)
}
