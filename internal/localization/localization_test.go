package localization

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/lshigami/jlpt-assessment/internal/repository"
	"github.com/lshigami/jlpt-assessment/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeResolver struct {
	values map[string][]Value
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, key, lang string) (string, bool) {
	f.calls++
	for _, v := range f.values[key] {
		if v.Language == lang {
			return v.Value, true
		}
	}
	return "", false
}

func (f *fakeResolver) ResolveAll(_ context.Context, key string) []Value {
	f.calls++
	return f.values[key]
}

func (f *fakeResolver) ResolveMany(_ context.Context, keys []string, lang string) map[string]string {
	f.calls++
	out := map[string]string{}
	for _, k := range keys {
		for _, v := range f.values[k] {
			if v.Language == lang {
				out[k] = v.Value
			}
		}
	}
	return out
}

func (f *fakeResolver) ResolveAllMany(_ context.Context, keys []string) map[string][]Value {
	f.calls++
	out := map[string][]Value{}
	for _, k := range keys {
		out[k] = f.values[k]
	}
	return out
}

type fixedLanguages []string

func (l fixedLanguages) LanguageCodes(context.Context) []string { return l }

// flakyRepo fails the next `failures` reads, then delegates.
type flakyRepo struct {
	repository.TranslationRepository
	failures int
	reads    int
}

var errDBDown = errors.New("connection refused")

func (r *flakyRepo) fail() bool {
	r.reads++
	if r.failures > 0 {
		r.failures--
		return true
	}
	return false
}

func (r *flakyRepo) Find(ctx context.Context, key, lang string) (*model.Translation, error) {
	if r.fail() {
		return nil, errDBDown
	}
	return r.TranslationRepository.Find(ctx, key, lang)
}

func (r *flakyRepo) FindAllByKey(ctx context.Context, key string) ([]model.Translation, error) {
	if r.fail() {
		return nil, errDBDown
	}
	return r.TranslationRepository.FindAllByKey(ctx, key)
}

func (r *flakyRepo) FindByKeys(ctx context.Context, keys []string, lang string) ([]model.Translation, error) {
	if r.fail() {
		return nil, errDBDown
	}
	return r.TranslationRepository.FindByKeys(ctx, keys, lang)
}

func (r *flakyRepo) FindAllByKeys(ctx context.Context, keys []string) ([]model.Translation, error) {
	if r.fail() {
		return nil, errDBDown
	}
	return r.TranslationRepository.FindAllByKeys(ctx, keys)
}

func seedGreeting(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.DB(t)
	testutil.SeedLanguage(t, db, "en", "English")
	testutil.SeedLanguage(t, db, "vi", "Vietnamese")
	testutil.SeedTranslation(t, db, "greeting", "en", "Hello")
	testutil.SeedTranslation(t, db, "greeting", "vi", "Xin chào")
	return db
}

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestLocalizerSingleLanguage(t *testing.T) {
	ctx := context.Background()
	res := &fakeResolver{values: map[string][]Value{"greeting": {{Language: "en", Value: "Hello"}}}}
	loc := NewLocalizer(res, fixedLanguages{"en", "vi"})

	req := loc.ForLanguage(ctx, "en")
	assert.Equal(t, "Hello", req.Text(ctx, "greeting", "こんにちは").Value)

	req = loc.ForLanguage(ctx, "vi")
	got := req.Text(ctx, "greeting", "こんにちは")
	assert.Equal(t, "こんにちは", got.Value)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `"こんにちは"`, string(raw))
}

func TestLocalizerAllLanguages(t *testing.T) {
	ctx := context.Background()
	res := &fakeResolver{values: map[string][]Value{"greeting": {
		{Language: "en", Value: "Hello"},
		{Language: "fr", Value: "Bonjour"},
	}}}
	loc := NewLocalizer(res, fixedLanguages{"en", "vi"})

	got := loc.ForLanguage(ctx, "").Text(ctx, "greeting", "こんにちは")
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"language":"en","value":"Hello"},
		{"language":"vi","value":"こんにちは"},
		{"language":"fr","value":"Bonjour"}
	]`, string(raw))

	empty := NewLocalizer(res, fixedLanguages{}).ForLanguage(ctx, "").Text(ctx, "missing", "x")
	raw, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLocalizerPrefetchServesTextWithoutFurtherLookups(t *testing.T) {
	ctx := context.Background()
	res := &fakeResolver{values: map[string][]Value{
		"q.1": {{Language: "en", Value: "Question one"}},
		"a.1": {{Language: "en", Value: "Answer one"}, {Language: "vi", Value: "Đáp án một"}},
	}}
	loc := NewLocalizer(res, fixedLanguages{"en", "vi"})

	req := loc.ForLanguage(ctx, "en")
	req.Prefetch(ctx, []string{"q.1", "a.1", "a.2"})
	assert.Equal(t, 1, res.calls)
	assert.Equal(t, "Question one", req.Text(ctx, "q.1", "問1").Value)
	assert.Equal(t, "Answer one", req.Text(ctx, "a.1", "答1").Value)
	assert.Equal(t, "答2", req.Text(ctx, "a.2", "答2").Value)
	assert.Equal(t, 1, res.calls)

	all := loc.ForLanguage(ctx, "")
	all.Prefetch(ctx, []string{"q.1", "a.1"})
	assert.Equal(t, 2, res.calls)
	raw, err := json.Marshal(all.Text(ctx, "q.1", "問1"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"language":"en","value":"Question one"},{"language":"vi","value":"問1"}]`, string(raw))
	assert.Equal(t, 2, res.calls)

	// Keys outside the batch still resolve one by one.
	all.Text(ctx, "q.2", "問2")
	assert.Equal(t, 3, res.calls)
}

func TestDBResolver(t *testing.T) {
	ctx := context.Background()
	db := testutil.DB(t)
	testutil.SeedLanguage(t, db, "vi", "Vietnamese")
	testutil.SeedLanguage(t, db, "en", "English")
	testutil.SeedTranslation(t, db, "test.1.title", "en", "Placement")
	testutil.SeedTranslation(t, db, "test.1.title", "vi", "Xếp lớp")
	testutil.SeedTranslation(t, db, "test.2.title", "en", "Review")

	r := NewDBResolver(repository.NewTranslationRepository(db))

	val, ok := r.Resolve(ctx, "test.1.title", "vi")
	assert.True(t, ok)
	assert.Equal(t, "Xếp lớp", val)

	_, ok = r.Resolve(ctx, "test.1.title", "fr")
	assert.False(t, ok)
	_, ok = r.Resolve(ctx, "", "en")
	assert.False(t, ok)

	assert.Equal(t, []Value{{Language: "en", Value: "Placement"}, {Language: "vi", Value: "Xếp lớp"}}, r.ResolveAll(ctx, "test.1.title"))
	assert.Equal(t, []string{"en", "vi"}, r.LanguageCodes(ctx))

	assert.Equal(t, map[string]string{"test.1.title": "Placement", "test.2.title": "Review"},
		r.ResolveMany(ctx, []string{"test.1.title", "test.2.title", "test.3.title", ""}, "en"))
	assert.Equal(t, map[string][]Value{
		"test.1.title": {{Language: "en", Value: "Placement"}, {Language: "vi", Value: "Xếp lớp"}},
		"test.2.title": {{Language: "en", Value: "Review"}},
		"test.3.title": {},
	}, r.ResolveAllMany(ctx, []string{"test.1.title", "test.2.title", "test.3.title"}))
}

func TestDBResolverReportsFailedBatchAsNil(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{TranslationRepository: repository.NewTranslationRepository(seedGreeting(t)), failures: 2}
	r := NewDBResolver(repo)

	assert.Nil(t, r.ResolveMany(ctx, []string{"greeting"}, "en"))
	assert.Nil(t, r.ResolveAllMany(ctx, []string{"greeting"}))
	assert.NotNil(t, r.ResolveMany(ctx, []string{"missing"}, "en"))
}

func TestCachedResolverFallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := &flakyRepo{TranslationRepository: repository.NewTranslationRepository(seedGreeting(t))}
	c := NewCachedResolver(NewDBResolver(repo), rdb, time.Minute)

	val, ok := c.Resolve(ctx, "greeting", "en")
	assert.True(t, ok)
	assert.Equal(t, "Hello", val)

	_, ok = c.Resolve(ctx, "greeting", "fr")
	assert.False(t, ok)

	assert.Len(t, c.ResolveAll(ctx, "greeting"), 2)
	assert.Equal(t, map[string]string{"greeting": "Xin chào"}, c.ResolveMany(ctx, []string{"greeting"}, "vi"))
	assert.Equal(t, 4, repo.reads)
}

func TestCachedResolverReadThrough(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)
	repo := &flakyRepo{TranslationRepository: repository.NewTranslationRepository(seedGreeting(t))}
	c := NewCachedResolver(NewDBResolver(repo), rdb, 5*time.Minute)

	val, ok := c.Resolve(ctx, "greeting", "vi")
	require.True(t, ok)
	assert.Equal(t, "Xin chào", val)
	cached, err := mr.Get(singleKey("vi", "greeting"))
	require.NoError(t, err)
	assert.Equal(t, "Xin chào", cached)
	assert.Equal(t, 5*time.Minute, mr.TTL(singleKey("vi", "greeting")))

	val, ok = c.Resolve(ctx, "greeting", "vi")
	require.True(t, ok)
	assert.Equal(t, "Xin chào", val)
	assert.Equal(t, 1, repo.reads)

	// A real miss is remembered.
	_, ok = c.Resolve(ctx, "greeting", "fr")
	assert.False(t, ok)
	cached, err = mr.Get(singleKey("fr", "greeting"))
	require.NoError(t, err)
	assert.Equal(t, missMarker, cached)
	_, ok = c.Resolve(ctx, "greeting", "fr")
	assert.False(t, ok)
	assert.Equal(t, 2, repo.reads)

	vals := c.ResolveAll(ctx, "greeting")
	assert.Equal(t, []Value{{Language: "en", Value: "Hello"}, {Language: "vi", Value: "Xin chào"}}, vals)
	assert.Equal(t, vals, c.ResolveAll(ctx, "greeting"))
	assert.Equal(t, 3, repo.reads)
}

func TestCachedResolverDoesNotCacheFailedLookups(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)
	repo := &flakyRepo{TranslationRepository: repository.NewTranslationRepository(seedGreeting(t)), failures: 1}
	c := NewCachedResolver(NewDBResolver(repo), rdb, 10*time.Minute)

	_, ok := c.Resolve(ctx, "greeting", "en")
	assert.False(t, ok)
	assert.False(t, mr.Exists(singleKey("en", "greeting")))

	val, ok := c.Resolve(ctx, "greeting", "en")
	assert.True(t, ok)
	assert.Equal(t, "Hello", val)

	repo.failures = 1
	assert.Nil(t, c.ResolveAll(ctx, "greeting"))
	assert.False(t, mr.Exists(listKey("greeting")))
	assert.Len(t, c.ResolveAll(ctx, "greeting"), 2)

	repo.failures = 1
	assert.Nil(t, c.ResolveMany(ctx, []string{"greeting", "missing"}, "vi"))
	assert.False(t, mr.Exists(singleKey("vi", "missing")))
	assert.Equal(t, map[string]string{"greeting": "Xin chào"}, c.ResolveMany(ctx, []string{"greeting", "missing"}, "vi"))

	repo.failures = 1
	assert.Nil(t, c.ResolveAllMany(ctx, []string{"greeting"}))
	assert.Len(t, c.ResolveAllMany(ctx, []string{"greeting"})["greeting"], 2)
}

func TestCachedResolverBatchMixesHitsAndMisses(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)
	repo := &flakyRepo{TranslationRepository: repository.NewTranslationRepository(seedGreeting(t))}
	c := NewCachedResolver(NewDBResolver(repo), rdb, time.Minute)

	require.NoError(t, mr.Set(singleKey("en", "farewell"), "Goodbye"))
	require.NoError(t, mr.Set(singleKey("en", "gone"), missMarker))

	got := c.ResolveMany(ctx, []string{"greeting", "farewell", "gone", "unknown"}, "en")
	assert.Equal(t, map[string]string{"greeting": "Hello", "farewell": "Goodbye"}, got)
	assert.Equal(t, 1, repo.reads)

	cached, err := mr.Get(singleKey("en", "unknown"))
	require.NoError(t, err)
	assert.Equal(t, missMarker, cached)

	got = c.ResolveMany(ctx, []string{"greeting", "unknown"}, "en")
	assert.Equal(t, map[string]string{"greeting": "Hello"}, got)
	assert.Equal(t, 1, repo.reads)

	all := c.ResolveAllMany(ctx, []string{"greeting", "unknown"})
	assert.Equal(t, map[string][]Value{
		"greeting": {{Language: "en", Value: "Hello"}, {Language: "vi", Value: "Xin chào"}},
		"unknown":  {},
	}, all)
	assert.Equal(t, all, c.ResolveAllMany(ctx, []string{"greeting", "unknown"}))
	assert.Equal(t, 2, repo.reads)
}
