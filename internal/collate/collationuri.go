package collate

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// CollationSpec is a parsed collation URI:
// "http://<host>/collation" (platform default) or
// "http://<host>/collation?k=v;k=v…" with the recognized keys listed
// there.
type CollationSpec struct {
	Class           string
	Rules           string
	Lang            string
	Strength        Strength
	Decomposition   Decomposition
	CaseOrder       CaseOrder
	Alphanumeric    bool
	IgnoreCase      bool
	IgnoreModifiers bool
	IgnoreWidth     bool
}

// CaseOrder selects which case sorts first under the case-order collator
// variant, or the collator's own default ordering.
type CaseOrder int

const (
	CaseOrderDefault CaseOrder = iota
	CaseOrderUpperFirst
	CaseOrderLowerFirst
)

// ParseCollationURI parses a collation URI's query parameters. Unrecognized
// keys are ignored; malformed values fall back to defaults rather than
// erroring, since an invalid collation URI is reported by the caller as
// XTDE1035 with more context than this parser has.
func ParseCollationURI(raw string) (CollationSpec, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return CollationSpec{}, fmt.Errorf("collate.ParseCollationURI: %w", err)
	}
	spec := CollationSpec{}
	// Collation URIs use ';' as the parameter separator, not '&'.
	query := strings.ReplaceAll(u.RawQuery, ";", "&")
	values, err := url.ParseQuery(query)
	if err != nil {
		return CollationSpec{}, fmt.Errorf("collate.ParseCollationURI: %w", err)
	}
	spec.Class = values.Get("class")
	spec.Rules = values.Get("rules")
	spec.Lang = values.Get("lang")
	switch values.Get("strength") {
	case "primary":
		spec.Strength = StrengthPrimary
	case "secondary":
		spec.Strength = StrengthSecondary
	case "identical":
		spec.Strength = StrengthIdentical
	default:
		spec.Strength = StrengthTertiary
	}
	switch values.Get("decomposition") {
	case "standard":
		spec.Decomposition = DecompositionStandard
	case "full":
		spec.Decomposition = DecompositionFull
	default:
		spec.Decomposition = DecompositionNone
	}
	switch values.Get("case-order") {
	case "upper-first":
		spec.CaseOrder = CaseOrderUpperFirst
	case "lower-first":
		spec.CaseOrder = CaseOrderLowerFirst
	default:
		spec.CaseOrder = CaseOrderDefault
	}
	spec.Alphanumeric = values.Get("alphanumeric") == "yes"
	spec.IgnoreCase = values.Get("ignore-case") == "yes"
	spec.IgnoreModifiers = values.Get("ignore-modifiers") == "yes"
	spec.IgnoreWidth = values.Get("ignore-width") == "yes"
	return spec, nil
}

// Resolve builds the StringCollator a CollationSpec describes, wiring
// golang.org/x/text/language to parse the lang parameter.
//
// A lang value is taken as the substring before its first hyphen, or the
// entire value when there is no hyphen.
func (s CollationSpec) Resolve() (StringCollator, error) {
	var base StringCollator = Codepoint
	if s.Lang != "" {
		langTag := s.Lang
		if i := strings.IndexByte(langTag, '-'); i >= 0 {
			langTag = langTag[:i]
		}
		tag, err := language.Parse(langTag)
		if err != nil {
			return nil, fmt.Errorf("collate.CollationSpec.Resolve: invalid lang %q: %w", s.Lang, err)
		}
		base = NewLocale(tag, s.Strength, s.Decomposition)
	}
	switch s.CaseOrder {
	case CaseOrderUpperFirst:
		base = NewUppercaseFirst(base)
	case CaseOrderLowerFirst:
		base = NewLowercaseFirst(base)
	}
	if s.Alphanumeric {
		base = NewAlphanumeric(base)
	}
	return base, nil
}

// Registry resolves collation URIs to collators by string key.
type Registry struct {
	cache map[string]StringCollator
}

// NewRegistry builds an empty collation registry.
func NewRegistry() *Registry {
	return &Registry{cache: make(map[string]StringCollator)}
}

// Resolve returns the collator for uri, parsing and caching it on first
// use. The platform-default collation URI (no recognized parameters) and
// the empty string both resolve to Codepoint.
func (r *Registry) Resolve(uri string) (StringCollator, error) {
	if uri == "" {
		return Codepoint, nil
	}
	if c, ok := r.cache[uri]; ok {
		return c, nil
	}
	spec, err := ParseCollationURI(uri)
	if err != nil {
		return nil, err
	}
	collator, err := spec.Resolve()
	if err != nil {
		return nil, err
	}
	r.cache[uri] = collator
	return collator, nil
}
