package form

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassista/room_desk/internal/repository"
	"github.com/go-playground/validator/v10"
)

// BookingFields are the editable fields of the booking form.
var BookingFields = []string{
	"responsible_name", "attendees", "room_id", "booking_date",
	"start_time", "end_time", "has_coffee", "coffee_description",
}

const tagCoffeeDescription = "coffee_description"

type bookingInput struct {
	ResponsibleName   string `json:"responsible_name" validate:"min=3"`
	Attendees         int    `json:"attendees" validate:"gt=0"`
	RoomID            int    `json:"room_id" validate:"gt=0"`
	BookingDate       string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime         string `json:"start_time" validate:"hhmm"`
	EndTime           string `json:"end_time" validate:"hhmm"`
	HasCoffee         bool   `json:"has_coffee"`
	CoffeeDescription string `json:"coffee_description"`
}

var bookingMessages = map[string]string{
	"responsible_name.min":  "Name must be at least 3 characters.",
	"attendees.gt":          "Attendees must be greater than zero.",
	"not_integer":           "Must be a whole number.",
	"not_number":            "Must be a number.",
	"not_bool":              "Must be true or false.",
	"room_id.gt":            "Select a room.",
	"booking_date.required": "The date is required.",
	"booking_date.datetime": "Invalid date (YYYY-MM-DD).",
	"hhmm":                  "Invalid time format (HH:MM).",
	tagAfterStart:           "End time must be after start time.",
	tagCoffeeDescription:    "Describe the coffee service.",
}

func (e *Engine) bookingStructLevel(sl validator.StructLevel) {
	in := sl.Current().Interface().(bookingInput)
	endAfterStart(sl, in.StartTime, in.EndTime)
	if e.opts.RequireCoffeeDescription && in.HasCoffee && strings.TrimSpace(in.CoffeeDescription) == "" {
		sl.ReportError(in.CoffeeDescription, "coffee_description", "CoffeeDescription", tagCoffeeDescription, "")
	}
}

// BookingDefaults are the values of an empty create form, dated today.
func (e *Engine) BookingDefaults() Values {
	return Values{
		"responsible_name":   "",
		"attendees":          1,
		"room_id":            0,
		"booking_date":       e.now().Format(time.DateOnly),
		"start_time":         "09:00",
		"end_time":           "10:00",
		"has_coffee":         false,
		"coffee_description": "",
	}
}

// BookingValues projects a booking into form values.
func BookingValues(b repository.Booking) Values {
	date, start := splitInstant(b.StartTime)
	_, end := splitInstant(b.EndTime)
	desc := ""
	if b.CoffeeDescription != nil {
		desc = *b.CoffeeDescription
	}
	return Values{
		"responsible_name":   b.ResponsibleName,
		"attendees":          b.Attendees,
		"room_id":            b.Room.ID,
		"booking_date":       date,
		"start_time":         start,
		"end_time":           end,
		"has_coffee":         b.HasCoffee,
		"coffee_description": desc,
	}
}

// ValidateBooking coerces and validates booking values. The payload carries
// combined instants and a null coffee description when no coffee is wanted.
func (e *Engine) ValidateBooking(values Values) (repository.BookingCreate, Errors) {
	errs := Errors{}
	attendees, err := values.Int("attendees")
	if err != nil {
		errs["attendees"] = coerceMessage(bookingMessages, "attendees", err)
	}
	roomID, err := values.Int("room_id")
	if err != nil {
		errs["room_id"] = coerceMessage(bookingMessages, "room_id", err)
	}
	hasCoffee, err := values.Bool("has_coffee")
	if err != nil {
		errs["has_coffee"] = coerceMessage(bookingMessages, "has_coffee", err)
	}

	in := bookingInput{
		ResponsibleName:   values.String("responsible_name"),
		Attendees:         attendees,
		RoomID:            roomID,
		BookingDate:       strings.TrimSpace(values.String("booking_date")),
		StartTime:         values.String("start_time"),
		EndTime:           values.String("end_time"),
		HasCoffee:         hasCoffee,
		CoffeeDescription: values.String("coffee_description"),
	}
	e.check(in, errs, bookingMessages)

	payload := repository.BookingCreate{
		ResponsibleName: in.ResponsibleName,
		Attendees:       in.Attendees,
		RoomID:          in.RoomID,
		StartTime:       combineInstant(in.BookingDate, in.StartTime),
		EndTime:         combineInstant(in.BookingDate, in.EndTime),
		HasCoffee:       in.HasCoffee,
	}
	if in.HasCoffee && strings.TrimSpace(in.CoffeeDescription) != "" {
		desc := in.CoffeeDescription
		payload.CoffeeDescription = &desc
	}
	return payload, errs
}

// BookingWarnings reports soft constraints against the known rooms.
func (e *Engine) BookingWarnings(values Values, rooms []repository.Room) Warnings {
	warnings := Warnings{}
	attendees, err := values.Int("attendees")
	if err != nil || attendees <= 0 {
		return warnings
	}
	roomID, err := values.Int("room_id")
	if err != nil || roomID <= 0 {
		return warnings
	}
	for _, r := range rooms {
		if r.ID == roomID && r.Capacity > 0 && attendees > r.Capacity {
			warnings["attendees"] = fmt.Sprintf("%s holds %d people; %d attendees exceed its capacity.", r.Name, r.Capacity, attendees)
		}
	}
	return warnings
}

// BookingUpdateFrom turns a validated payload into a full patch.
func BookingUpdateFrom(p repository.BookingCreate) repository.BookingUpdate {
	return repository.BookingUpdate{
		ResponsibleName:   &p.ResponsibleName,
		Attendees:         &p.Attendees,
		RoomID:            &p.RoomID,
		StartTime:         &p.StartTime,
		EndTime:           &p.EndTime,
		HasCoffee:         &p.HasCoffee,
		CoffeeDescription: repository.NullableOf(p.CoffeeDescription),
	}
}

// BookingSchema adapts the engine to the modal flow.
type BookingSchema struct {
	Engine *Engine
}

func (s BookingSchema) Fields() []string                    { return BookingFields }
func (s BookingSchema) Defaults() Values                    { return s.Engine.BookingDefaults() }
func (s BookingSchema) Project(b repository.Booking) Values { return BookingValues(b) }
func (s BookingSchema) Validate(v Values) (repository.BookingCreate, Errors) {
	return s.Engine.ValidateBooking(v)
}
