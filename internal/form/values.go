package form

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Values is the working state of a form, keyed by field name.
// Inputs arrive as JSON values or url-encoded strings.
type Values map[string]any

// Errors maps a field name to its first failing rule's message.
type Errors map[string]string

// Warnings are soft constraints; they never block a submit.
type Warnings map[string]string

// Clone returns a shallow copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge returns a copy of v with changes applied for the given fields only.
func (v Values) Merge(changes Values, fields []string) Values {
	out := v.Clone()
	for _, name := range fields {
		if val, ok := changes[name]; ok {
			out[name] = val
		}
	}
	return out
}

type coerceError string

func (e coerceError) Error() string { return string(e) }

const (
	errNotNumber  coerceError = "not_number"
	errNotInteger coerceError = "not_integer"
	errNotBool    coerceError = "not_bool"
)

// String reads a field as text. Missing values read as "".
func (v Values) String(name string) string {
	switch val := v[name].(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// Int coerces a field to an integer. Blank input reads as 0.
func (v Values) Int(name string) (int, error) {
	switch val := v[name].(type) {
	case nil:
		return 0, nil
	case int:
		return checkRange(int64(val))
	case int64:
		return checkRange(val)
	case float64:
		return floatToInt(val)
	case json.Number:
		return parseIntText(val.String())
	case string:
		return parseIntText(val)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errNotNumber
	}
}

func parseIntText(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return checkRange(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotNumber
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, errNotNumber
	}
	if f != math.Trunc(f) {
		return 0, errNotInteger
	}
	return int(f), nil
}

// checkRange keeps integers within 32 bits so they behave the same on every
// platform and never wrap.
func checkRange(n int64) (int, error) {
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errNotNumber
	}
	return int(n), nil
}

// Bool coerces a field to a boolean. HTML checkboxes post "on" or nothing.
func (v Values) Bool(name string) (bool, error) {
	switch val := v[name].(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "on", "1", "yes":
			return true, nil
		case "false", "off", "0", "no", "":
			return false, nil
		}
	}
	return false, errNotBool
}
