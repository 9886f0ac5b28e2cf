package checks

import (
	"fmt"

	"github.com/georgepadayatti/adesvalidator/i18n"
)

// Message records the outcome of one executed check.
type Message struct {
	Check  string
	Level  Level
	Tag    i18n.MessageTag
	Text   string
	Passed bool
}

// Conclusion is the outcome of a chain of checks.
type Conclusion struct {
	Indication    Indication
	SubIndication SubIndication
	Messages      []Message
}

// NewConclusion creates a conclusion from an outcome and its messages.
func NewConclusion(ind Indication, sub SubIndication, messages ...Message) *Conclusion {
	return &Conclusion{
		Indication:    ind,
		SubIndication: sub,
		Messages:      append([]Message(nil), messages...),
	}
}

// IsPassed reports whether the indication is PASSED.
func (c *Conclusion) IsPassed() bool {
	return c != nil && c.Indication == Passed
}

// Errors returns the failed FAIL-level messages.
func (c *Conclusion) Errors() []Message { return c.failedAt(LevelFail) }

// Warnings returns the failed WARN-level messages.
func (c *Conclusion) Warnings() []Message { return c.failedAt(LevelWarn) }

// Infos returns the failed INFORM-level messages.
func (c *Conclusion) Infos() []Message { return c.failedAt(LevelInform) }

func (c *Conclusion) failedAt(l Level) []Message {
	var out []Message
	for _, m := range c.Messages {
		if !m.Passed && m.Level == l {
			out = append(out, m)
		}
	}
	return out
}

// String renders the indication pair, e.g. "INDETERMINATE/REVOKED_NO_POE".
func (c *Conclusion) String() string {
	if c.SubIndication == NoSubIndication {
		return string(c.Indication)
	}
	return fmt.Sprintf("%s/%s", c.Indication, c.SubIndication)
}
