package sqlpipe

import (
	"fmt"
	"regexp"
	"strings"
)

// principalPlaceholders are the literal forms the statement generator uses
// when it remembers to scope by user. Quoted forms are checked first so the
// unquoted forms do not clobber their quote characters.
var principalPlaceholders = []string{"'$user_id'", "'$1'", "$user_id", "$1"}

// clauseBoundaryRe finds the first clause before which a new WHERE must be
// inserted when the statement has none.
var clauseBoundaryRe = regexp.MustCompile(`(?i)\b(order\s+by|group\s+by|having|limit)\b`)

var (
	whereRe = regexp.MustCompile(`(?i)\bwhere\b`)
	limitRe = regexp.MustCompile(`(?i)\blimit\b`)

	// principalFilterRe matches an actual equality condition on the principal
	// column. A bare mention of the column (projection, ORDER BY) is not a
	// filter and must still get the injected conjunct.
	principalFilterRe = regexp.MustCompile(`(?i)\buser_id\s*=`)
)

// Sanitizer rewrites an already validated statement so that every result
// row belongs to the requesting principal and the row count is capped.
// Scope is idempotent: running it on its own output changes nothing.
type Sanitizer struct {
	maxResults int
}

func NewSanitizer(maxResults int) *Sanitizer {
	return &Sanitizer{maxResults: maxResults}
}

// Scope injects the principal filter and the row cap.
func (s *Sanitizer) Scope(statement string, principalId string) string {
	stmt := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statement), ";"))
	quotedId := fmt.Sprintf("'%s'", principalId)

	substituted := false
	for _, placeholder := range principalPlaceholders {
		if strings.Contains(stmt, placeholder) {
			stmt = strings.ReplaceAll(stmt, placeholder, quotedId)
			substituted = true
		}
	}

	switch {
	case substituted:
		// Generator already scoped the statement, placeholders are filled.
	case principalFilterRe.MatchString(stmt):
		// Statement already carries a principal condition; injecting a
		// second one would double-filter.
	default:
		stmt = s.injectPrincipalFilter(stmt, quotedId)
	}

	if !limitRe.MatchString(stmt) {
		stmt = fmt.Sprintf("%s LIMIT %d", stmt, s.maxResults)
	}

	return stmt
}

func (s *Sanitizer) injectPrincipalFilter(stmt string, quotedId string) string {
	condition := fmt.Sprintf("user_id = %s", quotedId)

	if loc := whereRe.FindStringIndex(stmt); loc != nil {
		// AND the principal condition in front of the existing one.
		return stmt[:loc[1]] + " " + condition + " AND" + stmt[loc[1]:]
	}

	if loc := clauseBoundaryRe.FindStringIndex(stmt); loc != nil {
		return stmt[:loc[0]] + "WHERE " + condition + " " + stmt[loc[0]:]
	}

	return stmt + " WHERE " + condition
}
