package repository

import "encoding/json"

// Room is a meeting room with a daily operating window.
type Room struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Local     string `json:"local"`
	Capacity  int    `json:"capacity"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RoomCreate is a Room without its backend-assigned id.
type RoomCreate struct {
	Name      string `json:"name"`
	Local     string `json:"local"`
	Capacity  int    `json:"capacity"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// RoomUpdate is a partial patch; nil fields are left untouched.
type RoomUpdate struct {
	Name      *string `json:"name,omitempty"`
	Local     *string `json:"local,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
}

// RoomRef is the non-owning room reference embedded in a Booking.
type RoomRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Booking struct {
	ID                int     `json:"id"`
	ResponsibleName   string  `json:"responsible_name"`
	Attendees         int     `json:"attendees"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	HasCoffee         bool    `json:"has_coffee"`
	CoffeeDescription *string `json:"coffee_description"`
	Room              RoomRef `json:"room"`
}

// BookingCreate always carries coffee_description, null included.
type BookingCreate struct {
	ResponsibleName   string  `json:"responsible_name"`
	Attendees         int     `json:"attendees"`
	RoomID            int     `json:"room_id"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	HasCoffee         bool    `json:"has_coffee"`
	CoffeeDescription *string `json:"coffee_description"`
}

// Nullable distinguishes "absent" from "explicit null" in a patch.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NullableOf marks the field as present, with v possibly nil.
func NullableOf[T any](v *T) Nullable[T] {
	return Nullable[T]{Set: true, Value: v}
}

type BookingUpdate struct {
	ResponsibleName   *string
	Attendees         *int
	RoomID            *int
	StartTime         *string
	EndTime           *string
	HasCoffee         *bool
	CoffeeDescription Nullable[string]
}

func (u BookingUpdate) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	if u.ResponsibleName != nil {
		out["responsible_name"] = *u.ResponsibleName
	}
	if u.Attendees != nil {
		out["attendees"] = *u.Attendees
	}
	if u.RoomID != nil {
		out["room_id"] = *u.RoomID
	}
	if u.StartTime != nil {
		out["start_time"] = *u.StartTime
	}
	if u.EndTime != nil {
		out["end_time"] = *u.EndTime
	}
	if u.HasCoffee != nil {
		out["has_coffee"] = *u.HasCoffee
	}
	if u.CoffeeDescription.Set {
		out["coffee_description"] = u.CoffeeDescription.Value
	}
	return json.Marshal(out)
}

func (u *BookingUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := map[string]any{
		"responsible_name": &u.ResponsibleName,
		"attendees":        &u.Attendees,
		"room_id":          &u.RoomID,
		"start_time":       &u.StartTime,
		"end_time":         &u.EndTime,
		"has_coffee":       &u.HasCoffee,
	}
	for name, dst := range fields {
		if msg, ok := raw[name]; ok {
			if err := json.Unmarshal(msg, dst); err != nil {
				return err
			}
		}
	}
	if msg, ok := raw["coffee_description"]; ok {
		u.CoffeeDescription.Set = true
		if err := json.Unmarshal(msg, &u.CoffeeDescription.Value); err != nil {
			return err
		}
	}
	return nil
}

// Page is one page of a paginated list response.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
}
