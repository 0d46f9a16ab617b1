package state

import (
	"strings"

	"customer-inquiry-be/internal/constant"
)

// DeriveTitle builds a session title from the first user message: newlines
// collapse to spaces and anything past the length cap is replaced with an
// ellipsis.
func DeriveTitle(message string) string {
	title := strings.ReplaceAll(message, "\n", " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return constant.DefaultSessionTitle
	}
	// The cap counts characters, not bytes; slicing bytes would cut a
	// multibyte rune in half.
	if runes := []rune(title); len(runes) > constant.SessionTitleMaxLen {
		title = string(runes[:constant.SessionTitleMaxLen]) + "..."
	}
	return title
}
