package service

import (
	"fmt"
	"sort"

	"github.com/lshigami/jlpt-assessment/internal/apperror"
	"github.com/lshigami/jlpt-assessment/internal/model"
)

// Composition rule names reported in violations.
const (
	RuleLessonReviewKind        = "lesson_review_kind"
	RuleLessonReviewDuplicate   = "lesson_review_duplicate_kind"
	RuleLessonReviewMaxSets     = "lesson_review_max_sets"
	RuleSkillKindMatch          = "skill_kind_match"
	RuleSpeakingMaxSets         = "speaking_max_sets"
	RuleAlreadyLinked           = "already_linked"
	lessonReviewMaxQuestionSets = 3
	speakingMaxQuestionSets     = 1
)

// compositionRule is the constraint a test kind puts on its linked sets.
type compositionRule struct {
	// allowed lists the permitted set kinds; nil means unrestricted.
	allowed map[model.ContentKind]bool
	// uniqueKinds forbids two linked sets of the same kind.
	uniqueKinds bool
	// maxSets caps the number of linked sets; zero means no cap.
	maxSets     int
	kindRule    string
	maxSetsRule string
}

func (r compositionRule) restricted() bool {
	return r.allowed != nil
}

func compositionRuleFor(kind model.TestKind) compositionRule {
	switch kind {
	case model.TestKindLessonReview:
		return compositionRule{
			allowed: map[model.ContentKind]bool{
				model.ContentKindVocabulary: true,
				model.ContentKindGrammar:    true,
				model.ContentKindKanji:      true,
			},
			uniqueKinds: true,
			maxSets:     lessonReviewMaxQuestionSets,
			kindRule:    RuleLessonReviewKind,
			maxSetsRule: RuleLessonReviewMaxSets,
		}
	case model.TestKindReading:
		return skillRule(model.ContentKindReading, 0)
	case model.TestKindListening:
		return skillRule(model.ContentKindListening, 0)
	case model.TestKindSpeaking:
		return skillRule(model.ContentKindSpeaking, speakingMaxQuestionSets)
	case model.TestKindPlacement, model.TestKindMatch, model.TestKindQuiz,
		model.TestKindSubscription, model.TestKindPractice:
		return compositionRule{}
	}
	return compositionRule{}
}

// skillRule binds a skill test to the set kind of the same name.
func skillRule(kind model.ContentKind, maxSets int) compositionRule {
	return compositionRule{
		allowed:     map[model.ContentKind]bool{kind: true},
		maxSets:     maxSets,
		kindRule:    RuleSkillKindMatch,
		maxSetsRule: RuleSpeakingMaxSets,
	}
}

// ValidateAttach checks that linking proposed to a test of testKind that
// already holds existing keeps the composition valid. It returns nil or a
// *apperror.CompositionViolation and never has side effects.
func ValidateAttach(testKind model.TestKind, existing, proposed []model.QuestionSet) error {
	linked := make(map[uint]bool, len(existing))
	for _, s := range existing {
		linked[s.ID] = true
	}
	var dup []uint
	for _, s := range proposed {
		if linked[s.ID] {
			dup = append(dup, s.ID)
		}
	}
	if len(dup) > 0 {
		return violation(RuleAlreadyLinked, "question sets are already linked to this test", dup)
	}

	rule := compositionRuleFor(testKind)
	if !rule.restricted() {
		return nil
	}

	var wrongKind []uint
	for _, s := range proposed {
		if !rule.allowed[s.Kind] {
			wrongKind = append(wrongKind, s.ID)
		}
	}
	if len(wrongKind) > 0 {
		return violation(rule.kindRule, fmt.Sprintf("question set kinds must be one of %s for a %s test", allowedList(rule), testKind), wrongKind)
	}

	if rule.uniqueKinds {
		// Within the batch itself.
		firstInBatch := make(map[model.ContentKind]uint)
		var batchDup []uint
		for _, s := range proposed {
			if _, ok := firstInBatch[s.Kind]; ok {
				batchDup = append(batchDup, s.ID)
				continue
			}
			firstInBatch[s.Kind] = s.ID
		}
		if len(batchDup) > 0 {
			return violation(RuleLessonReviewDuplicate, "the batch contains more than one question set of the same kind", batchDup)
		}

		// Against what is already linked.
		present := make(map[model.ContentKind]bool, len(existing))
		for _, s := range existing {
			present[s.Kind] = true
		}
		var clash []uint
		for _, s := range proposed {
			if present[s.Kind] {
				clash = append(clash, s.ID)
			}
		}
		if len(clash) > 0 {
			return violation(RuleLessonReviewDuplicate, "a question set of the same kind is already linked", clash)
		}
	}

	if rule.maxSets > 0 && len(existing)+len(proposed) > rule.maxSets {
		return violation(rule.maxSetsRule, fmt.Sprintf("a %s test may hold at most %d question sets", testKind, rule.maxSets), idsOf(proposed))
	}
	return nil
}

// ValidateKindChange checks whether a test whose sets are linked could take
// newKind. The violation lists the sets that must be detached first.
func ValidateKindChange(newKind model.TestKind, linked []model.QuestionSet) error {
	rule := compositionRuleFor(newKind)
	if !rule.restricted() {
		return nil
	}

	var incompatible []uint
	for _, s := range linked {
		if !rule.allowed[s.Kind] {
			incompatible = append(incompatible, s.ID)
		}
	}
	if len(incompatible) > 0 {
		return violation(rule.kindRule, fmt.Sprintf("linked question sets are incompatible with kind %s", newKind), incompatible)
	}

	if rule.uniqueKinds {
		seen := make(map[model.ContentKind]bool)
		var dup []uint
		for _, s := range linked {
			if seen[s.Kind] {
				dup = append(dup, s.ID)
				continue
			}
			seen[s.Kind] = true
		}
		if len(dup) > 0 {
			return violation(RuleLessonReviewDuplicate, fmt.Sprintf("kind %s allows one question set per kind", newKind), dup)
		}
	}

	if rule.maxSets > 0 && len(linked) > rule.maxSets {
		return violation(rule.maxSetsRule, fmt.Sprintf("kind %s allows at most %d question sets", newKind, rule.maxSets), idsOf(linked[rule.maxSets:]))
	}
	return nil
}

func violation(rule, msg string, ids []uint) error {
	return &apperror.CompositionViolation{Rule: rule, Message: msg, QuestionSetIDs: ids}
}

func idsOf(sets []model.QuestionSet) []uint {
	ids := make([]uint, 0, len(sets))
	for _, s := range sets {
		ids = append(ids, s.ID)
	}
	return ids
}

func allowedList(rule compositionRule) []string {
	out := make([]string, 0, len(rule.allowed))
	for k := range rule.allowed {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}
