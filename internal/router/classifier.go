package router

import (
	"errors"
	"strings"
	"unicode"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// ErrAmbiguous reports that a goal matched no role, or tied between roles.
// It is not fatal: the task is routed to the universal role.
var ErrAmbiguous = errors.New("task classification ambiguous")

// Classification is the result of mapping free text onto a role.
type Classification struct {
	Role models.Role
	// Scores counts keyword hits per role.
	Scores map[models.Role]int
	// Matched lists the keywords that hit, in role order then keyword order.
	Matched []string
	// Err is ErrAmbiguous when the role is the universal default.
	Err error
}

// Ambiguous reports whether the classifier fell back to universal.
func (c Classification) Ambiguous() bool {
	return errors.Is(c.Err, ErrAmbiguous)
}

// Classifier maps a goal to a role.
type Classifier interface {
	Classify(text string) Classification
}

// RoleKeywords lists the vocabulary that signals each role.
// Universal has no keywords; it is the fallback.
type RoleKeywords map[models.Role][]string

// DefaultRoleKeywords is the built-in vocabulary.
var DefaultRoleKeywords = RoleKeywords{
	models.RoleCoding: {
		"implement", "code", "coding", "program", "function", "bug", "debug", "fix",
		"refactor", "compile", "endpoint", "api", "backend", "frontend", "script",
		"deploy", "sql", "database", "build", "develop", "unit", "regex", "stack trace",
		"error", "crash", "integrate",
	},
	models.RoleReasoning: {
		"strategy", "strategic", "architecture", "architect", "plan", "analyze", "analysis",
		"tradeoff", "trade-off", "decide", "decision", "roadmap", "market", "business",
		"research", "evaluate", "risk", "scale", "scaling", "invest", "pricing", "competitor",
		"why",
	},
	models.RoleCreative: {
		"design", "ui", "logo", "visual", "color", "colour", "write", "writing", "story",
		"copy", "brand", "blog", "documentation", "docs", "tutorial", "poem", "illustrate",
		"slogan", "mockup", "landing page", "email", "name",
	},
}

// KeywordClassifier counts keyword hits per role. A unique maximum wins;
// no hits or a tie yields universal with ErrAmbiguous.
type KeywordClassifier struct {
	Keywords RoleKeywords
}

// NewKeywordClassifier uses DefaultRoleKeywords.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{Keywords: DefaultRoleKeywords}
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(text string) Classification {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	c := Classification{Scores: make(map[models.Role]int)}
	// Iterate roles in fixed order so Matched is deterministic.
	for _, role := range models.AllRoles() {
		for _, kw := range k.Keywords[role] {
			if matches(kw, lower, tokens) {
				c.Scores[role]++
				c.Matched = append(c.Matched, kw)
			}
		}
	}

	best, bestScore, tie := models.RoleUniversal, 0, false
	for _, role := range models.AllRoles() {
		switch s := c.Scores[role]; {
		case s > bestScore:
			best, bestScore, tie = role, s, false
		case s == bestScore && s > 0:
			tie = true
		}
	}
	if bestScore == 0 || tie {
		c.Role = models.RoleUniversal
		c.Err = ErrAmbiguous
		return c
	}
	c.Role = best
	return c
}

// matches treats multi-word keywords as substrings, short keywords as whole
// tokens, and longer keywords as stems ("implement" matches "implementation").
func matches(kw, lower string, tokens []string) bool {
	if strings.Contains(kw, " ") {
		return strings.Contains(lower, kw)
	}
	for _, tok := range tokens {
		if tok == kw || (len(kw) > 4 && strings.HasPrefix(tok, kw)) {
			return true
		}
	}
	return false
}
