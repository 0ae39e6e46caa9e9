package buddy

import (
	"database/sql/driver"
	"fmt"
)

// Status is the buddy's place in the idle → holding → sold → idle cycle.
type Status int

const (
	Idle Status = iota
	Holding
	Sold
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Holding:
		return "holding"
	case Sold:
		return "sold"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus is the inverse of String.
func ParseStatus(v string) (Status, error) {
	switch v {
	case "idle":
		return Idle, nil
	case "holding":
		return Holding, nil
	case "sold":
		return Sold, nil
	default:
		return Idle, fmt.Errorf("unknown buddy status %q", v)
	}
}

// Next is the only status s may move to.
func (s Status) Next() Status {
	switch s {
	case Idle:
		return Holding
	case Holding:
		return Sold
	case Sold:
		return Idle
	default:
		panic(fmt.Sprintf("buddy: no transition from %v", s))
	}
}

// Value stores the status as its name.
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan reads a status stored by Value.
func (s *Status) Scan(src any) error {
	var v string
	switch t := src.(type) {
	case string:
		v = t
	case []byte:
		v = string(t)
	default:
		return fmt.Errorf("buddy status: cannot scan %T", src)
	}
	parsed, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
