// Package checks implements the chain-of-checks engine every validation
// block is built on.
//
// A Check is data: a predicate, a policy level and the outcome to report if
// the predicate fails. A Chain executes its checks in order. IGNORE checks
// are skipped, INFORM and WARN checks record their outcome and continue, and
// the first failing FAIL check writes its indication pair into the
// conclusion and stops the chain. A chain that runs to completion concludes
// PASSED.
package checks

import (
	"github.com/georgepadayatti/adesvalidator/i18n"
)

// Check describes one step of a chain.
type Check struct {
	// Name is the policy key the level was resolved from.
	Name      string
	Level     Level
	Predicate func() bool

	Success i18n.MessageTag
	Failure i18n.MessageTag
	// Args are rendered into the success or failure text.
	Args []any

	Indication    Indication
	SubIndication SubIndication
}

// Chain is an ordered list of checks.
type Chain struct {
	printer *i18n.Printer
	checks  []Check
}

// NewChain creates an empty chain rendering messages with printer.
func NewChain(printer *i18n.Printer) *Chain {
	return &Chain{printer: printer}
}

// Add appends checks to the chain.
func (c *Chain) Add(checks ...Check) *Chain {
	c.checks = append(c.checks, checks...)
	return c
}

// Len returns the number of checks in the chain.
func (c *Chain) Len() int {
	return len(c.checks)
}

// Execute runs the chain. Predicates of skipped checks and of checks after a
// FAIL-level failure are never called.
func (c *Chain) Execute() *Conclusion {
	conclusion := &Conclusion{Indication: Passed}
	for _, check := range c.checks {
		if check.Level == LevelIgnore {
			continue
		}
		ok := check.Predicate()
		tag := check.Success
		if !ok {
			tag = check.Failure
		}
		conclusion.Messages = append(conclusion.Messages, Message{
			Check:  check.Name,
			Level:  check.Level,
			Tag:    tag,
			Text:   c.printer.Text(tag, check.Args...),
			Passed: ok,
		})
		if !ok && check.Level == LevelFail {
			conclusion.Indication = check.Indication
			conclusion.SubIndication = check.SubIndication
			return conclusion
		}
	}
	return conclusion
}
