package localization

import (
	"context"

	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/rs/zerolog/log"
)

// Value is one localized string.
type Value struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// Resolver looks up localized text by symbolic key. No method returns an
// error: a failed or empty lookup is reported as "not found" and the caller
// falls back to source-language text.
//
// The batch methods return a nil map when the lookup failed, and a non-nil
// map without the key when the key has no stored translation.
type Resolver interface {
	Resolve(ctx context.Context, key, languageCode string) (string, bool)
	ResolveAll(ctx context.Context, key string) []Value
	ResolveMany(ctx context.Context, keys []string, languageCode string) map[string]string
	ResolveAllMany(ctx context.Context, keys []string) map[string][]Value
}

// LanguageSource lists the languages content can be localized into.
type LanguageSource interface {
	LanguageCodes(ctx context.Context) []string
}

type DBResolver struct {
	repo repository.TranslationRepository
}

// NewDBResolver reads translations straight from the translation table.
func NewDBResolver(repo repository.TranslationRepository) *DBResolver {
	return &DBResolver{repo: repo}
}

func (r *DBResolver) Resolve(ctx context.Context, key, languageCode string) (string, bool) {
	val, ok, err := r.lookup(ctx, key, languageCode)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("language", languageCode).Msg("Translation lookup failed, using source text")
		return "", false
	}
	return val, ok
}

func (r *DBResolver) ResolveAll(ctx context.Context, key string) []Value {
	vals, err := r.lookupAll(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Translation list lookup failed, using source text")
		return nil
	}
	return vals
}

func (r *DBResolver) ResolveMany(ctx context.Context, keys []string, languageCode string) map[string]string {
	vals, err := r.lookupMany(ctx, keys, languageCode)
	if err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Str("language", languageCode).Msg("Batch translation lookup failed")
		return nil
	}
	return vals
}

func (r *DBResolver) ResolveAllMany(ctx context.Context, keys []string) map[string][]Value {
	vals, err := r.lookupAllMany(ctx, keys)
	if err != nil {
		log.Warn().Err(err).Int("keys", len(keys)).Msg("Batch translation list lookup failed")
		return nil
	}
	return vals
}

// lookup distinguishes a missing translation (ok == false, err == nil) from a
// failed read so the cache only remembers real misses.
func (r *DBResolver) lookup(ctx context.Context, key, languageCode string) (string, bool, error) {
	if key == "" || languageCode == "" {
		return "", false, nil
	}
	tr, err := r.repo.Find(ctx, key, languageCode)
	if err != nil {
		return "", false, err
	}
	if tr == nil {
		return "", false, nil
	}
	return tr.Value, true, nil
}

func (r *DBResolver) lookupAll(ctx context.Context, key string) ([]Value, error) {
	if key == "" {
		return nil, nil
	}
	trs, err := r.repo.FindAllByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	out := make([]Value, 0, len(trs))
	for _, tr := range trs {
		out = append(out, Value{Language: tr.LanguageCode, Value: tr.Value})
	}
	return out, nil
}

func (r *DBResolver) lookupMany(ctx context.Context, keys []string, languageCode string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	keys = nonEmpty(keys)
	if len(keys) == 0 || languageCode == "" {
		return out, nil
	}
	trs, err := r.repo.FindByKeys(ctx, keys, languageCode)
	if err != nil {
		return nil, err
	}
	for _, tr := range trs {
		out[tr.Key] = tr.Value
	}
	return out, nil
}

func (r *DBResolver) lookupAllMany(ctx context.Context, keys []string) (map[string][]Value, error) {
	out := make(map[string][]Value, len(keys))
	keys = nonEmpty(keys)
	if len(keys) == 0 {
		return out, nil
	}
	trs, err := r.repo.FindAllByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		out[k] = []Value{}
	}
	for _, tr := range trs {
		out[tr.Key] = append(out[tr.Key], Value{Language: tr.LanguageCode, Value: tr.Value})
	}
	return out, nil
}

func (r *DBResolver) LanguageCodes(ctx context.Context) []string {
	langs, err := r.repo.Languages(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Language list lookup failed")
		return nil
	}
	codes := make([]string, 0, len(langs))
	for _, l := range langs {
		codes = append(codes, l.Code)
	}
	return codes
}

// nonEmpty drops blank and repeated keys, keeping first-seen order.
func nonEmpty(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
