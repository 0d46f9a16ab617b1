package sqlpipe

import (
	"fmt"
	"regexp"
	"strings"
)

// Recommendation tells the caller what to do with a rejected statement.
type Recommendation string

const (
	RecommendationPassThrough     Recommendation = "pass_through"
	RecommendationNeedsCorrection Recommendation = "needs_correction"
)

// Verdict is the outcome of safety validation for one generated statement.
type Verdict struct {
	IsValid            bool
	Issues             []string
	Recommendation     Recommendation
	CorrectedStatement string
}

// blockedKeywords are mutating or administrative keywords that must never
// appear in a generated statement, matched as whole words.
var blockedKeywords = []string{
	"insert", "update", "delete", "drop", "alter", "truncate",
	"create", "grant", "revoke", "execute", "exec", "into", "set",
	"merge", "replace",
}

var (
	blockedKeywordRe = buildBlockedKeywordRe()
	entityRefRe      = regexp.MustCompile(`(?i)\b(?:from|join)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)
	// selectPrefixRe requires SELECT as a whole word, so "selecting data"
	// does not slip past rule 1.
	selectPrefixRe = regexp.MustCompile(`(?i)^select\b`)
)

func buildBlockedKeywordRe() *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(` + strings.Join(blockedKeywords, "|") + `)\b`)
}

// Validator is the sole defense between the statement generator and the
// database. It is a pure function over its inputs; it never executes
// anything.
type Validator struct {
	allowedEntities map[string]struct{}
}

func NewValidator(allowedEntities []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedEntities))
	for _, e := range allowedEntities {
		allowed[strings.ToLower(e)] = struct{}{}
	}
	return &Validator{allowedEntities: allowed}
}

// Validate applies the safety rules in order, first failure wins:
// read-only prefix, blocked keywords, entity whitelist, statement chaining.
func (v *Validator) Validate(statement string) Verdict {
	trimmed := strings.TrimSpace(statement)

	if !selectPrefixRe.MatchString(trimmed) {
		return rejected(fmt.Sprintf("statement must start with SELECT, got: %q", firstWord(trimmed)))
	}

	if match := blockedKeywordRe.FindString(trimmed); match != "" {
		return rejected(fmt.Sprintf("statement contains disallowed keyword %q", strings.ToUpper(match)))
	}

	for _, m := range entityRefRe.FindAllStringSubmatch(trimmed, -1) {
		entity := strings.ToLower(m[1])
		if _, ok := v.allowedEntities[entity]; !ok {
			return rejected(fmt.Sprintf("statement references table %q which is not allowed", m[1]))
		}
	}

	if strings.Count(trimmed, ";") > 1 {
		return rejected("statement contains multiple statement terminators")
	}

	return Verdict{
		IsValid:        true,
		Issues:         []string{},
		Recommendation: RecommendationPassThrough,
	}
}

func rejected(issue string) Verdict {
	return Verdict{
		IsValid:        false,
		Issues:         []string{issue},
		Recommendation: RecommendationNeedsCorrection,
	}
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
