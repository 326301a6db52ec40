package zaken

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ParseFunc converts a loosely typed upstream value into its output form.
// A nil result means the field is null. A non-nil error means the input could
// not be coerced; the transformer logs it and stores null.
type ParseFunc func(raw any) (any, error)

// ErrUnparseable is wrapped by every parser error.
var ErrUnparseable = errors.New("unparseable value")

// IsAbsent reports whether a raw upstream value counts as "not set": nil, the
// empty string, any numeric zero and false.
func IsAbsent(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int32:
		return v == 0
	case int64:
		return v == 0
	case float32:
		return v == 0
	case float64:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// ParseError reports which parser rejected a raw value.
type ParseError struct {
	Kind string
	Raw  any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s from %T %v", ErrUnparseable, e.Kind, e.Raw, e.Raw)
}

func (e *ParseError) Unwrap() error { return ErrUnparseable }

// Temporal reports whether a date, datetime or time parser failed.
func (e *ParseError) Temporal() bool {
	switch e.Kind {
	case "date", "datetime", "time":
		return true
	}
	return false
}

func parseErr(kind string, raw any) error {
	return &ParseError{Kind: kind, Raw: raw}
}

// ToString trims the value's string form; absent values become null.
func ToString(raw any) (any, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	return strings.TrimSpace(stringify(raw)), nil
}

// ToStringOrEmpty is ToString with "" instead of null.
func ToStringOrEmpty(raw any) (any, error) {
	if IsAbsent(raw) {
		return "", nil
	}
	return strings.TrimSpace(stringify(raw)), nil
}

// ToInt keeps an explicit zero, maps other absent values to null and
// truncates everything else to an integer.
func ToInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == 0 {
			return 0, nil
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, parseErr("int", raw)
		}
		return int(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	if IsAbsent(raw) {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return nil, parseErr("int", raw)
		}
		return n, nil
	}
	return nil, parseErr("int", raw)
}

// ToBool is false for absent values and true otherwise.
func ToBool(raw any) (any, error) {
	return !IsAbsent(raw), nil
}

// ToDate accepts civil dates, timestamps and ISO-8601 strings.
func ToDate(raw any) (any, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case civil.Date:
		return v, nil
	case civil.DateTime:
		return v.Date, nil
	case time.Time:
		return civil.DateOf(v), nil
	case string:
		t, err := parseISO(strings.TrimSpace(v))
		if err != nil {
			return nil, parseErr("date", raw)
		}
		return civil.DateOf(t), nil
	}
	return nil, parseErr("date", raw)
}

// ToDateTime accepts timestamps, civil dates (midnight) and ISO-8601 strings.
func ToDateTime(raw any) (any, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case civil.DateTime:
		return v.In(time.UTC), nil
	case civil.Date:
		return v.In(time.UTC), nil
	case string:
		t, err := parseISO(strings.TrimSpace(v))
		if err != nil {
			return nil, parseErr("datetime", raw)
		}
		return t, nil
	}
	return nil, parseErr("datetime", raw)
}

var timePattern = regexp.MustCompile(`^([0-9]{1,2})[.,:;]([0-9]{1,2})`)

// ToTime renders "HH:MM". Free text is matched against h[.,:;]m. Minutes
// below 6 are rendered with a trailing zero ("10:5" and "10:05" both become
// "10:50"); upstream clients depend on that output.
func ToTime(raw any) (any, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	switch v := raw.(type) {
	case civil.Time:
		return fmt.Sprintf("%02d:%02d", v.Hour, v.Minute), nil
	case civil.DateTime:
		return ToTime(v.Time)
	case time.Time:
		return ToTime(civil.TimeOf(v))
	case string:
		m := timePattern.FindStringSubmatch(v)
		if m == nil {
			break
		}
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if (hour <= 23 && minute <= 59) || (hour == 24 && minute == 0) {
			if minute < 6 {
				return fmt.Sprintf("%02d:%d0", hour, minute), nil
			}
			return fmt.Sprintf("%02d:%02d", hour, minute), nil
		}
	}
	return nil, parseErr("time", raw)
}

var nonPlateChars = regexp.MustCompile(`[^0-9a-zA-Z-]+`)

// ToLicensePlates normalises a free-text list of license plates into
// "AB-12-CD | EF-34-GH".
func ToLicensePlates(raw any) (any, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	s := nonPlateChars.ReplaceAllString(stringify(raw), " ")
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToUpper(strings.Join(fields, " | ")), nil
}

// Const ignores the input and always yields v.
func Const(v any) ParseFunc {
	return func(any) (any, error) { return v, nil }
}

// Translated runs the value through ToString and then a translation table.
func Translated(table Translations, fallback bool) ParseFunc {
	return func(raw any) (any, error) {
		s, _ := ToString(raw)
		return Translate(s, table, fallback), nil
	}
}

// isoLayouts covers the ISO-8601 shapes Decos emits, most specific first.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrUnparseable
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(raw)
}
