package service

import (
	"fmt"
	"math/rand/v2"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/model"
	"github.com/rs/zerolog/log"
)

// ShortfallPolicy decides what a strategy does when the merged draw is
// smaller than its required total.
type ShortfallPolicy int

const (
	// ShortfallDegrade returns whatever was drawn and reports the gap
	// through the distribution.
	ShortfallDegrade ShortfallPolicy = iota
	// ShortfallFail returns an InsufficientContentError.
	ShortfallFail
)

func (p ShortfallPolicy) String() string {
	switch p {
	case ShortfallDegrade:
		return "degrade"
	case ShortfallFail:
		return "fail"
	}
	return fmt.Sprintf("ShortfallPolicy(%d)", int(p))
}

// Candidate is one question reachable through one linked question set.
type Candidate struct {
	SetID    uint
	SetKind  model.ContentKind
	Question model.Question
}

// Pool is the content a strategy samples from: the test's linked sets and
// each set's questions in storage order.
type Pool struct {
	Sets      []model.QuestionSet
	Questions map[uint][]model.Question
}

// Bucket is one stratum of a strategy.
type Bucket struct {
	Name   string
	Target int
	Match  func(Candidate) bool
	// SetKind, when set, requires exactly one linked set of this kind.
	SetKind model.ContentKind
}

// Strategy describes a stratified draw: filter the pool, draw up to Target
// from each bucket, shuffle the concatenation, then cap it at Total.
type Strategy struct {
	Name     string
	Eligible func(Candidate) bool
	Buckets  []Bucket
	// Total caps the merged draw; zero keeps everything drawn.
	Total  int
	Policy ShortfallPolicy
}

// BucketCount reports the target and the achieved count of one bucket.
type BucketCount struct {
	Name     string
	Target   int
	Achieved int
}

type Distribution struct {
	Buckets []BucketCount
	Total   int
}

// Achieved returns the achieved count for the named bucket.
func (d Distribution) Achieved(name string) int {
	for _, b := range d.Buckets {
		if b.Name == name {
			return b.Achieved
		}
	}
	return 0
}

type Batch struct {
	Questions    []model.Question
	Distribution Distribution
}

const (
	placementLevel5Target = 3
	placementLevel4Target = 4
	placementLevel3Target = 3

	lessonReviewPerKind = 5
	lessonReviewTotal   = 10
)

func isCoreKind(c Candidate) bool {
	return c.SetKind.IsCore()
}

func levelBucket(level, target int) Bucket {
	return Bucket{
		Name:   fmt.Sprintf("level%d", level),
		Target: target,
		Match:  func(c Candidate) bool { return c.Question.Level == level },
	}
}

// PlacementStrategy draws 3/4/3 questions from levels 5/4/3 of the
// vocabulary, grammar and kanji sets and degrades on shortfall.
func PlacementStrategy() Strategy {
	return Strategy{
		Name:     "placement",
		Eligible: isCoreKind,
		Buckets: []Bucket{
			levelBucket(5, placementLevel5Target),
			levelBucket(4, placementLevel4Target),
			levelBucket(3, placementLevel3Target),
		},
		Policy: ShortfallDegrade,
	}
}

// LessonReviewStrategy draws up to 5 matching questions from each of the
// vocabulary, grammar and kanji sets, merges them and keeps 10. A pool
// smaller than 10 fails.
func LessonReviewStrategy() Strategy {
	buckets := make([]Bucket, 0, len(model.CoreContentKinds))
	for _, kind := range model.CoreContentKinds {
		buckets = append(buckets, Bucket{
			Name:    kindBucketName(kind),
			Target:  lessonReviewPerKind,
			SetKind: kind,
			Match: func(c Candidate) bool {
				return c.SetKind == kind && c.Question.Kind == kind
			},
		})
	}
	return Strategy{
		Name:     "lesson_review",
		Eligible: isCoreKind,
		Buckets:  buckets,
		Total:    lessonReviewTotal,
		Policy:   ShortfallFail,
	}
}

// LevelDrawStrategy draws count questions of one level from every linked
// set regardless of kind.
func LevelDrawStrategy(level, count int) Strategy {
	return Strategy{
		Name:     "level_draw",
		Eligible: func(Candidate) bool { return true },
		Buckets:  []Bucket{levelBucket(level, count)},
		Policy:   ShortfallDegrade,
	}
}

func kindBucketName(kind model.ContentKind) string {
	switch kind {
	case model.ContentKindVocabulary:
		return "vocabulary"
	case model.ContentKindGrammar:
		return "grammar"
	case model.ContentKindKanji:
		return "kanji"
	case model.ContentKindListening:
		return "listening"
	case model.ContentKindReading:
		return "reading"
	case model.ContentKindSpeaking:
		return "speaking"
	case model.ContentKindGeneral:
		return "general"
	}
	return string(kind)
}

// StrategyForTestKind picks the session strategy of a test kind. Kinds
// without a session flow return a ValidationError.
func StrategyForTestKind(kind model.TestKind) (Strategy, error) {
	switch kind {
	case model.TestKindPlacement:
		return PlacementStrategy(), nil
	case model.TestKindLessonReview:
		return LessonReviewStrategy(), nil
	case model.TestKindMatch, model.TestKindQuiz, model.TestKindReading, model.TestKindListening,
		model.TestKindSpeaking, model.TestKindSubscription, model.TestKindPractice:
		return Strategy{}, apperror.Validation("test kind %s has no session sampling strategy", kind)
	}
	return Strategy{}, apperror.Validation("unknown test kind %q", kind)
}

// Sample runs strategy over pool. It never mutates pool; answer order of
// every returned question is shuffled independently.
func Sample(rng *rand.Rand, pool Pool, strategy Strategy) (*Batch, error) {
	if err := checkBucketSets(pool, strategy); err != nil {
		return nil, err
	}

	candidates := eligibleCandidates(pool, strategy.Eligible)

	type drawn struct {
		bucket    int
		candidate Candidate
	}
	var merged []drawn
	taken := make(map[uint]bool)
	for i, b := range strategy.Buckets {
		var members []Candidate
		inBucket := make(map[uint]bool)
		for _, c := range candidates {
			id := c.Question.ID
			if taken[id] || inBucket[id] || !b.Match(c) {
				continue
			}
			inBucket[id] = true
			members = append(members, c)
		}
		picked := takeRandom(rng, members, b.Target)
		if len(picked) < b.Target {
			log.Warn().
				Str("strategy", strategy.Name).
				Str("bucket", b.Name).
				Int("target", b.Target).
				Int("available", len(picked)).
				Msg("Sampling bucket under-supplied")
		}
		for _, c := range picked {
			taken[c.Question.ID] = true
			merged = append(merged, drawn{bucket: i, candidate: c})
		}
	}

	shuffle(rng, merged)

	if strategy.Total > 0 {
		if len(merged) < strategy.Total {
			if strategy.Policy == ShortfallFail {
				return nil, &apperror.InsufficientContentError{
					Message:   strategy.Name + " candidate pool is too small",
					Required:  strategy.Total,
					Available: len(merged),
				}
			}
			log.Warn().
				Str("strategy", strategy.Name).
				Int("target", strategy.Total).
				Int("available", len(merged)).
				Msg("Sampling total under-supplied")
		} else {
			merged = merged[:strategy.Total]
		}
	}

	dist := Distribution{Buckets: make([]BucketCount, len(strategy.Buckets))}
	for i, b := range strategy.Buckets {
		dist.Buckets[i] = BucketCount{Name: b.Name, Target: b.Target}
	}
	questions := make([]model.Question, 0, len(merged))
	for _, d := range merged {
		dist.Buckets[d.bucket].Achieved++
		q := d.candidate.Question
		q.Answers = takeRandom(rng, q.Answers, len(q.Answers))
		questions = append(questions, q)
	}
	dist.Total = len(questions)

	return &Batch{Questions: questions, Distribution: dist}, nil
}

// checkBucketSets enforces the one-set-per-kind requirement of buckets
// bound to a set kind. A missing kind is a hard failure, never degraded.
func checkBucketSets(pool Pool, strategy Strategy) error {
	for _, b := range strategy.Buckets {
		if b.SetKind == "" {
			continue
		}
		var ids []uint
		for _, s := range pool.Sets {
			if s.Kind == b.SetKind {
				ids = append(ids, s.ID)
			}
		}
		switch len(ids) {
		case 1:
		case 0:
			return &apperror.InsufficientContentError{
				Message: fmt.Sprintf("%s requires a %s question set, none is linked", strategy.Name, b.SetKind),
			}
		default:
			return &apperror.CompositionViolation{
				Rule:           "one_set_per_kind",
				Message:        fmt.Sprintf("%s requires exactly one %s question set", strategy.Name, b.SetKind),
				QuestionSetIDs: ids,
			}
		}
	}
	return nil
}

// eligibleCandidates flattens the pool in set order. A question linked
// through several sets yields one candidate per set; Sample matches buckets
// first and then keeps a question at most once.
func eligibleCandidates(pool Pool, eligible func(Candidate) bool) []Candidate {
	var out []Candidate
	for _, set := range pool.Sets {
		for _, q := range pool.Questions[set.ID] {
			c := Candidate{SetID: set.ID, SetKind: set.Kind, Question: q}
			if eligible != nil && !eligible(c) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
