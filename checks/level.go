package checks

import (
	"errors"
	"fmt"
)

// ErrUnknownLevel is returned for severity names other than the four levels.
var ErrUnknownLevel = errors.New("unknown check level")

// Level is the policy-declared severity of a check.
type Level int

const (
	// LevelIgnore skips the check entirely.
	LevelIgnore Level = iota
	// LevelInform records the outcome as information.
	LevelInform
	// LevelWarn records a failure as a warning.
	LevelWarn
	// LevelFail ends the chain on failure.
	LevelFail
)

var levelNames = map[Level]string{
	LevelIgnore: "IGNORE",
	LevelInform: "INFORM",
	LevelWarn:   "WARN",
	LevelFail:   "FAIL",
}

// String returns the policy spelling of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel parses exactly FAIL, WARN, INFORM or IGNORE.
func ParseLevel(s string) (Level, error) {
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return LevelIgnore, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if _, ok := levelNames[l]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLevel, int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
