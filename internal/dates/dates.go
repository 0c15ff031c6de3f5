// Package dates normalizes calendar dates and wall-clock times for events.
//
// Every event date is persisted as a plain yyyy-MM-dd string with no zone.
// Inputs arrive in three shapes (a raw string typed into a form, a native
// time value built in code, or a timestamp read back from the document
// store) and each shape has its own conversion rule.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the persisted date format.
const Layout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// isoLayouts are tried in order for raw strings that are not already a
// plain date.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Kind tags the variant held by a DateValue.
type Kind int

const (
	KindRaw Kind = iota
	KindNative
	KindStoreTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindNative:
		return "native"
	case KindStoreTimestamp:
		return "store_timestamp"
	default:
		return "unknown"
	}
}

// DateValue is a date input in one of its three accepted shapes.
type DateValue struct {
	kind Kind
	raw  string
	t    time.Time
}

// Raw wraps a string as typed by a user or sent over the wire.
func Raw(s string) DateValue { return DateValue{kind: KindRaw, raw: s} }

// Native wraps a time value constructed in code. Its calendar date is taken
// in the value's own location.
func Native(t time.Time) DateValue { return DateValue{kind: KindNative, t: t} }

// StoreTimestamp wraps a timestamp read back from the document store. Store
// timestamps are instants, so their calendar date is taken in UTC.
func StoreTimestamp(t time.Time) DateValue { return DateValue{kind: KindStoreTimestamp, t: t} }

func (v DateValue) Kind() Kind { return v.kind }

func (v DateValue) String() string {
	if v.kind == KindRaw {
		return v.raw
	}
	return v.t.Format(time.RFC3339)
}

// FromAny converts a document field into a DateValue.
func FromAny(v any) (DateValue, error) {
	switch x := v.(type) {
	case string:
		return Raw(x), nil
	case time.Time:
		return StoreTimestamp(x), nil
	case *time.Time:
		if x == nil {
			return DateValue{}, fmt.Errorf("%w: nil timestamp", ErrInvalidDate)
		}
		return StoreTimestamp(*x), nil
	default:
		return DateValue{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, v)
	}
}

// Normalize converts any accepted date input into yyyy-MM-dd.
func Normalize(v DateValue) (string, error) {
	switch v.kind {
	case KindRaw:
		return normalizeRaw(v.raw)
	case KindNative:
		if v.t.IsZero() {
			return "", fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return v.t.Format(Layout), nil
	case KindStoreTimestamp:
		if v.t.IsZero() {
			return "", fmt.Errorf("%w: zero timestamp", ErrInvalidDate)
		}
		return v.t.UTC().Format(Layout), nil
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidDate, v.kind)
	}
}

func normalizeRaw(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidDate)
	}

	if datePattern.MatchString(s) {
		if _, err := time.Parse(Layout, s); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return s, nil
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustNormalize is Normalize for known-good literals.
func MustNormalize(v DateValue) string {
	s, err := Normalize(v)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateTime checks a HH:MM 24-hour string.
func ValidateTime(s string) error {
	if !timePattern.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// AddDays shifts a normalized date by n calendar days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(Layout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t.AddDate(0, 0, n).Format(Layout), nil
}

// Compare orders two (date, time) pairs. Both dates and times are fixed
// width, so lexical order equals chronological order.
func Compare(dateA, timeA, dateB, timeB string) int {
	if c := strings.Compare(dateA, dateB); c != 0 {
		return c
	}
	return strings.Compare(timeA, timeB)
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(Layout)
}
