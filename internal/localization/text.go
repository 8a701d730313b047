package localization

import (
	"context"
	"encoding/json"
)

// Text is a localized string. With a requested language it serializes as a
// plain string; without one it serializes as the full [{language, value}]
// list.
type Text struct {
	Value  string
	Values []Value
	all    bool
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.all {
		if t.Values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.Values)
	}
	return json.Marshal(t.Value)
}

// Localizer applies the source-text fallback rule on top of a Resolver.
type Localizer struct {
	resolver  Resolver
	languages LanguageSource
}

func NewLocalizer(resolver Resolver, languages LanguageSource) *Localizer {
	return &Localizer{resolver: resolver, languages: languages}
}

// Request captures the language choice of one call so the language list is
// read at most once per request.
type Request struct {
	l         *Localizer
	language  string
	languages []string

	prefetched map[string]bool
	single     map[string]string
	all        map[string][]Value
}

func (l *Localizer) ForLanguage(ctx context.Context, language string) *Request {
	req := &Request{l: l, language: language}
	if language == "" {
		req.languages = l.languages.LanguageCodes(ctx)
	}
	return req
}

// Prefetch loads the translations of keys in one batch. Text calls for a
// prefetched key skip the resolver. A failed batch leaves nothing memoized.
func (r *Request) Prefetch(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if r.language != "" {
		vals := r.l.resolver.ResolveMany(ctx, keys, r.language)
		if vals == nil {
			return
		}
		if r.single == nil {
			r.single = make(map[string]string, len(vals))
		}
		for k, v := range vals {
			r.single[k] = v
		}
	} else {
		vals := r.l.resolver.ResolveAllMany(ctx, keys)
		if vals == nil {
			return
		}
		if r.all == nil {
			r.all = make(map[string][]Value, len(vals))
		}
		for k, v := range vals {
			r.all[k] = v
		}
	}
	if r.prefetched == nil {
		r.prefetched = make(map[string]bool, len(keys))
	}
	for _, k := range keys {
		r.prefetched[k] = true
	}
}

// Text localizes key. A language with no stored translation gets the source
// text.
func (r *Request) Text(ctx context.Context, key, source string) Text {
	if r.language != "" {
		if r.prefetched[key] {
			if val, ok := r.single[key]; ok {
				return Text{Value: val}
			}
			return Text{Value: source}
		}
		if val, ok := r.l.resolver.Resolve(ctx, key, r.language); ok {
			return Text{Value: val}
		}
		return Text{Value: source}
	}

	var all []Value
	if r.prefetched[key] {
		all = r.all[key]
	} else {
		all = r.l.resolver.ResolveAll(ctx, key)
	}
	stored := make(map[string]string, len(all))
	for _, v := range all {
		stored[v.Language] = v.Value
	}
	values := make([]Value, 0, len(r.languages))
	seen := make(map[string]bool, len(r.languages))
	for _, lang := range r.languages {
		seen[lang] = true
		val, ok := stored[lang]
		if !ok {
			val = source
		}
		values = append(values, Value{Language: lang, Value: val})
	}
	// Translations stored for a language missing from the language table are
	// still returned.
	for _, v := range all {
		if !seen[v.Language] {
			values = append(values, v)
		}
	}
	return Text{Values: values, all: true}
}
