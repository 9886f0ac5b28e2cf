// Package i18n renders the messages attached to validation checks.
//
// Every check carries a stable MessageTag for its success and its failure.
// Tags are catalogue keys: the English text is built in and other languages
// can be registered at start-up.
package i18n

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// MessageTag is the stable identifier of a validation message.
type MessageTag string

// Pair holds the tags a check reports on success and on failure.
type Pair struct {
	OK MessageTag
	KO MessageTag
}

func pair(name string) Pair {
	return Pair{OK: MessageTag(name + "_OK"), KO: MessageTag(name + "_KO")}
}

// Provider owns the message catalogue. Register translations before handing
// out printers.
type Provider struct {
	builder *catalog.Builder
}

// NewProvider creates a provider with the English catalogue loaded.
func NewProvider() *Provider {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, text := range english {
		// SetString only fails for malformed message syntax, which the
		// built-in catalogue does not contain.
		_ = b.SetString(language.English, string(tag), text)
	}
	return &Provider{builder: b}
}

// Register adds or replaces texts for a language. Tags without a text in
// lang are filled in from English.
func (p *Provider) Register(lang language.Tag, texts map[MessageTag]string) error {
	for tag, text := range english {
		if translated, ok := texts[tag]; ok {
			text = translated
		}
		if err := p.builder.SetString(lang, string(tag), text); err != nil {
			return err
		}
	}
	for tag, text := range texts {
		if _, known := english[tag]; known {
			continue
		}
		if err := p.builder.SetString(lang, string(tag), text); err != nil {
			return err
		}
	}
	return nil
}

// Languages returns the languages with at least one registered text.
func (p *Provider) Languages() []language.Tag {
	return p.builder.Languages()
}

// Printer returns a renderer for the registered language closest to lang,
// English when none matches.
func (p *Provider) Printer(lang language.Tag) *Printer {
	supported := []language.Tag{language.English}
	for _, t := range p.builder.Languages() {
		if t != language.English {
			supported = append(supported, t)
		}
	}
	chosen := language.English
	if _, idx, conf := language.NewMatcher(supported).Match(lang); conf != language.No {
		chosen = supported[idx]
	}
	return &Printer{p: message.NewPrinter(chosen, message.Catalog(p.builder))}
}

// Printer renders tagged messages in one language.
type Printer struct {
	p *message.Printer
}

// Text renders tag with args. A nil printer renders the bare tag.
func (pr *Printer) Text(tag MessageTag, args ...any) string {
	if pr == nil {
		return string(tag)
	}
	return pr.p.Sprintf(string(tag), args...)
}

// Time formats t the way every message shows instants.
func Time(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
