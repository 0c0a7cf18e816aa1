package scheduler

import (
	"database/sql/driver"
	"encoding"
	"fmt"
)

// State is the scheduling lifecycle stage of a card.
type State int

const (
	StateNew        State = iota + 1 // Never reviewed.
	StateLearning                    // In the initial learning steps.
	StateReview                      // In the long-term review cycle.
	StateRelearning                  // Lapsed, repeating the relearning steps.
)

var (
	stateNames = [...]string{
		StateNew:        "new",
		StateLearning:   "learning",
		StateReview:     "review",
		StateRelearning: "relearning",
	}
	stateByName = map[string]State{
		"new":        StateNew,
		"learning":   StateLearning,
		"review":     StateReview,
		"relearning": StateRelearning,
	}
)

var (
	_ fmt.Stringer             = State(0)
	_ encoding.TextMarshaler   = State(0)
	_ encoding.TextUnmarshaler = (*State)(nil)
	_ driver.Valuer            = State(0)
)

func (s State) isValid() bool {
	return s >= StateNew && s <= StateRelearning
}

// String returns the lowercase state name, or "state(n)" for invalid values.
func (s State) String() string {
	if s.isValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("scheduler: invalid state: %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	v, ok := stateByName[string(text)]
	if !ok {
		return fmt.Errorf("scheduler: invalid state: %q", text)
	}
	*s = v
	return nil
}

// Value implements driver.Valuer so states persist as text columns.
func (s State) Value() (driver.Value, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return string(text), nil
}

// Scan implements sql.Scanner.
func (s *State) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return s.UnmarshalText(v)
	case string:
		return s.UnmarshalText([]byte(v))
	default:
		return fmt.Errorf("scheduler: invalid state: unsupported type %T", src)
	}
}
