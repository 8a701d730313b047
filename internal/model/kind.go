package model

import "fmt"

// TestKind is the closed set of assessment kinds. Control flow in the
// composition validator and the sampler switches on it; every switch lists
// all kinds so a new kind shows up as an unhandled case.
type TestKind string

const (
	TestKindPlacement    TestKind = "PLACEMENT"
	TestKindMatch        TestKind = "MATCH"
	TestKindQuiz         TestKind = "QUIZ"
	TestKindLessonReview TestKind = "LESSON_REVIEW"
	TestKindReading      TestKind = "READING"
	TestKindListening    TestKind = "LISTENING"
	TestKindSpeaking     TestKind = "SPEAKING"
	TestKindSubscription TestKind = "SUBSCRIPTION"
	TestKindPractice     TestKind = "PRACTICE"
)

var AllTestKinds = []TestKind{
	TestKindPlacement,
	TestKindMatch,
	TestKindQuiz,
	TestKindLessonReview,
	TestKindReading,
	TestKindListening,
	TestKindSpeaking,
	TestKindSubscription,
	TestKindPractice,
}

func ParseTestKind(s string) (TestKind, error) {
	for _, k := range AllTestKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown test kind %q", s)
}

// ContentKind classifies both question sets and individual questions.
type ContentKind string

const (
	ContentKindVocabulary ContentKind = "VOCABULARY"
	ContentKindGrammar    ContentKind = "GRAMMAR"
	ContentKindKanji      ContentKind = "KANJI"
	ContentKindListening  ContentKind = "LISTENING"
	ContentKindReading    ContentKind = "READING"
	ContentKindSpeaking   ContentKind = "SPEAKING"
	ContentKindGeneral    ContentKind = "GENERAL"
)

var AllContentKinds = []ContentKind{
	ContentKindVocabulary,
	ContentKindGrammar,
	ContentKindKanji,
	ContentKindListening,
	ContentKindReading,
	ContentKindSpeaking,
	ContentKindGeneral,
}

// CoreContentKinds are the kinds placement and lesson review draw from, in
// the order lesson review reports them.
var CoreContentKinds = []ContentKind{
	ContentKindVocabulary,
	ContentKindGrammar,
	ContentKindKanji,
}

func ParseContentKind(s string) (ContentKind, error) {
	for _, k := range AllContentKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown question set kind %q", s)
}

func (k ContentKind) IsCore() bool {
	switch k {
	case ContentKindVocabulary, ContentKindGrammar, ContentKindKanji:
		return true
	case ContentKindListening, ContentKindReading, ContentKindSpeaking, ContentKindGeneral:
		return false
	}
	return false
}

type TestStatus string

const (
	TestStatusDraft    TestStatus = "DRAFT"
	TestStatusActive   TestStatus = "ACTIVE"
	TestStatusInactive TestStatus = "INACTIVE"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

type EntitlementStatus string

const (
	EntitlementNotStarted EntitlementStatus = "NOT_STARTED"
	EntitlementActive     EntitlementStatus = "ACTIVE"
)
