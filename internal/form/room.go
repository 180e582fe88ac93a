package form

import (
	"github.com/bassista/room_desk/internal/repository"
	"github.com/go-playground/validator/v10"
)

// RoomFields are the editable fields of the room form.
var RoomFields = []string{"name", "local", "capacity", "start_time", "end_time"}

type roomInput struct {
	Name      string `json:"name" validate:"min=3"`
	Local     string `json:"local" validate:"min=3"`
	Capacity  int    `json:"capacity" validate:"gt=0"`
	StartTime string `json:"start_time" validate:"hhmm"`
	EndTime   string `json:"end_time" validate:"hhmm"`
}

var roomMessages = map[string]string{
	"name.min":             "Name must be at least 3 characters.",
	"local.min":            "Location must be at least 3 characters.",
	"capacity.gt":          "Capacity must be a positive number.",
	"capacity.not_integer": "Capacity must be a whole number.",
	"not_number":           "Must be a number.",
	"hhmm":                 "Invalid time format (HH:MM).",
	tagAfterStart:          "End time must be after start time.",
}

func roomStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(roomInput)
	endAfterStart(sl, in.StartTime, in.EndTime)
}

// RoomDefaults are the values of an empty create form.
func RoomDefaults() Values {
	return Values{
		"name":       "",
		"local":      "",
		"capacity":   0,
		"start_time": "08:00",
		"end_time":   "18:00",
	}
}

// RoomValues projects a room into form values.
func RoomValues(r repository.Room) Values {
	return Values{
		"name":       r.Name,
		"local":      r.Local,
		"capacity":   r.Capacity,
		"start_time": clockHHMM(r.StartTime),
		"end_time":   clockHHMM(r.EndTime),
	}
}

// ValidateRoom coerces and validates room values. The payload is only
// meaningful when errs is empty.
func (e *Engine) ValidateRoom(values Values) (repository.RoomCreate, Errors) {
	errs := Errors{}
	capacity, err := values.Int("capacity")
	if err != nil {
		errs["capacity"] = coerceMessage(roomMessages, "capacity", err)
	}

	in := roomInput{
		Name:      values.String("name"),
		Local:     values.String("local"),
		Capacity:  capacity,
		StartTime: values.String("start_time"),
		EndTime:   values.String("end_time"),
	}
	e.check(in, errs, roomMessages)

	return repository.RoomCreate(in), errs
}

// RoomUpdateFrom turns a validated payload into a full patch.
func RoomUpdateFrom(p repository.RoomCreate) repository.RoomUpdate {
	return repository.RoomUpdate{
		Name:      &p.Name,
		Local:     &p.Local,
		Capacity:  &p.Capacity,
		StartTime: &p.StartTime,
		EndTime:   &p.EndTime,
	}
}

// RoomSchema adapts the engine to the modal flow.
type RoomSchema struct {
	Engine *Engine
}

func (s RoomSchema) Fields() []string                 { return RoomFields }
func (s RoomSchema) Defaults() Values                 { return RoomDefaults() }
func (s RoomSchema) Project(r repository.Room) Values { return RoomValues(r) }
func (s RoomSchema) Validate(v Values) (repository.RoomCreate, Errors) {
	return s.Engine.ValidateRoom(v)
}
