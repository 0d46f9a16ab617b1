package router

import "strings"

// Confirmation vocabulary for replies to a pending rewrite. Matching is
// case-insensitive and exact on the trimmed text, except the original
// request which is a substring match.
var (
	affirmativeReplies = map[string]struct{}{
		"yes":                  {},
		"confirm":              {},
		"y":                    {},
		"yes, search for that": {},
	}

	negativeReplies = map[string]struct{}{
		"no":                  {},
		"edit":                {},
		"no, let me rephrase": {},
	}
)

func normalizeReply(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

func isAffirmative(message string) bool {
	_, ok := affirmativeReplies[normalizeReply(message)]
	return ok
}

func isNegative(message string) bool {
	_, ok := negativeReplies[normalizeReply(message)]
	return ok
}

func requestsOriginal(message string) bool {
	return strings.Contains(normalizeReply(message), "original")
}

// isConfirmationKeyword reports whether a past turn is part of the
// confirmation vocabulary rather than a real query. Used when scanning
// history backward for the user's original request.
func isConfirmationKeyword(message string) bool {
	return isAffirmative(message) || isNegative(message) || requestsOriginal(message)
}
