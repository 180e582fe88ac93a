package form

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var hhmmPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

const tagAfterStart = "after_start"

// Options tune rules that are configurable per deployment.
type Options struct {
	RequireCoffeeDescription bool
}

// Engine validates room and booking form values.
type Engine struct {
	validate *validator.Validate
	opts     Options
	now      func() time.Time
}

// NewEngine builds a validator with the form tags registered.
func NewEngine(opts Options) *Engine {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return hhmmPattern.MatchString(fl.Field().String())
	})

	e := &Engine{validate: v, opts: opts, now: time.Now}
	v.RegisterStructValidation(roomStructLevel, roomInput{})
	v.RegisterStructValidation(e.bookingStructLevel, bookingInput{})
	return e
}

// endAfterStart reports on end_time when both times are well formed and the
// end does not come after the start.
func endAfterStart(sl validator.StructLevel, start, end string) {
	if !hhmmPattern.MatchString(start) || !hhmmPattern.MatchString(end) {
		return
	}
	if end <= start {
		sl.ReportError(end, "end_time", "EndTime", tagAfterStart, "")
	}
}

// check runs the validator and folds its errors into errs, keeping any
// coercion error already recorded for a field.
func (e *Engine) check(input any, errs Errors, messages map[string]string) {
	err := e.validate.Struct(input)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_form"] = err.Error()
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if _, taken := errs[field]; taken {
			continue
		}
		errs[field] = message(messages, field, fe.Tag())
	}
}

func message(messages map[string]string, field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := messages[tag]; ok {
		return msg
	}
	return "Invalid value."
}

// coerceMessage turns a coercion failure into the field's message.
func coerceMessage(messages map[string]string, field string, err error) string {
	var ce coerceError
	if errors.As(err, &ce) {
		return message(messages, field, string(ce))
	}
	return "Invalid value."
}
