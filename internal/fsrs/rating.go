package fsrs

import (
	"database/sql/driver"
	"encoding"
	"fmt"
)

// Rating is the learner's assessment of recall quality for one review.
type Rating int

const (
	Again Rating = iota + 1 // Failed to recall.
	Hard                    // Recalled with significant difficulty.
	Good                    // Recalled with some effort.
	Easy                    // Recalled effortlessly.
)

var (
	ratingNames  = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}
	ratingByName = map[string]Rating{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
	}
)

// Ratings lists all valid ratings in ascending order.
func Ratings() []Rating {
	return []Rating{Again, Hard, Good, Easy}
}

var (
	_ fmt.Stringer             = Rating(0)
	_ encoding.TextMarshaler   = Rating(0)
	_ encoding.TextUnmarshaler = (*Rating)(nil)
	_ driver.Valuer            = Rating(0)
)

// IsValid reports whether r is one of the four valid ratings.
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// String returns the lowercase rating name, or "rating(n)" for invalid values.
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, ok := ratingByName[string(text)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRating, text)
	}
	*r = v
	return nil
}

// Value implements driver.Valuer so ratings persist as text columns.
func (r Rating) Value() (driver.Value, error) {
	text, err := r.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan implements sql.Scanner.
func (r *Rating) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return r.UnmarshalText(v)
	case string:
		return r.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidRating, src)
	}
}
