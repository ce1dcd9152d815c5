// Package moderation screens user comments before they are persisted.
package moderation

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrBlankContent is returned for empty or whitespace-only content.
	ErrBlankContent = errors.New("comment content is blank")
	// ErrDeniedContent is returned when content contains a denylisted term.
	ErrDeniedContent = errors.New("comment contains disallowed words")
)

// Filter matches content against a denylist of substrings, case-insensitively.
// Content and terms are lowered both under the configured locale and
// language-neutrally, and a match in either form counts. Safe for concurrent use.
type Filter struct {
	locale language.Tag
	terms  []string
	// neutral holds the language-neutral form of each term, same order as terms
	neutral []string
}

// NewFilter builds a filter. locale is a BCP 47 tag such as "tr"; an
// unparseable tag falls back to language-neutral case folding.
func NewFilter(terms []string, locale string) *Filter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}

	f := &Filter{locale: tag}
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if lowered := f.lower(term, f.locale); lowered != "" {
			f.terms = append(f.terms, lowered)
			f.neutral = append(f.neutral, f.lower(term, language.Und))
		}
	}
	return f
}

// Check returns ErrBlankContent or ErrDeniedContent, or nil when content may be stored.
func (f *Filter) Check(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrBlankContent
	}
	if f.Contains(content) {
		return ErrDeniedContent
	}
	return nil
}

// Contains reports whether any denylisted term occurs in content.
func (f *Filter) Contains(content string) bool {
	if len(f.terms) == 0 {
		return false
	}
	forms := []string{f.lower(content, f.locale), f.lower(content, language.Und)}
	for i := range f.terms {
		for _, form := range forms {
			if strings.Contains(form, f.terms[i]) || strings.Contains(form, f.neutral[i]) {
				return true
			}
		}
	}
	return false
}

// Terms returns the normalized denylist.
func (f *Filter) Terms() []string {
	return append([]string(nil), f.terms...)
}

// lower composes then lowercases s under tag. Casers are stateful, so each call builds its own.
func (f *Filter) lower(s string, tag language.Tag) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(transform.Chain(norm.NFC, cases.Lower(tag)), s)
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}
