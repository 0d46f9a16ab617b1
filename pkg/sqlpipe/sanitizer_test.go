package sqlpipe

import (
	"strings"
	"testing"
)

func TestScope(t *testing.T) {
	sanitizer := NewSanitizer(100)

	tests := []struct {
		name      string
		statement string
		principal string
		want      string
	}{
		{
			name:      "injects filter into existing where clause",
			statement: "SELECT * FROM orders WHERE status='pending'",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' AND status='pending' LIMIT 100",
		},
		{
			name:      "adds where clause when none exists",
			statement: "SELECT * FROM orders",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' LIMIT 100",
		},
		{
			name:      "where clause goes before order by",
			statement: "SELECT * FROM orders ORDER BY created_at DESC",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' ORDER BY created_at DESC LIMIT 100",
		},
		{
			name:      "substitutes quoted placeholder",
			statement: "SELECT * FROM orders WHERE user_id = '$user_id'",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' LIMIT 100",
		},
		{
			name:      "substitutes bare placeholder",
			statement: "SELECT * FROM orders WHERE user_id = $1",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' LIMIT 100",
		},
		{
			name:      "existing user_id condition is left alone",
			statement: "SELECT * FROM orders WHERE user_id = 'u1' AND status='pending'",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' AND status='pending' LIMIT 100",
		},
		{
			name:      "column in select list still gets filtered",
			statement: "SELECT user_id, total FROM orders",
			principal: "u1",
			want:      "SELECT user_id, total FROM orders WHERE user_id = 'u1' LIMIT 100",
		},
		{
			name:      "column in order by still gets filtered",
			statement: "SELECT * FROM orders ORDER BY user_id",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' ORDER BY user_id LIMIT 100",
		},
		{
			name:      "existing limit is preserved",
			statement: "SELECT * FROM orders LIMIT 5",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' LIMIT 5",
		},
		{
			name:      "trailing terminator is dropped",
			statement: "SELECT * FROM orders;",
			principal: "u1",
			want:      "SELECT * FROM orders WHERE user_id = 'u1' LIMIT 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizer.Scope(tt.statement, tt.principal)
			if got != tt.want {
				t.Errorf("Scope(%q) = %q, want %q", tt.statement, got, tt.want)
			}
		})
	}
}

func TestScopeIsIdempotent(t *testing.T) {
	sanitizer := NewSanitizer(100)

	statements := []string{
		"SELECT * FROM orders",
		"SELECT * FROM orders WHERE status='pending'",
		"SELECT * FROM orders WHERE user_id = '$user_id' ORDER BY created_at",
		"SELECT count(*) FROM orders GROUP BY status",
	}

	for _, stmt := range statements {
		once := sanitizer.Scope(stmt, "u1")
		twice := sanitizer.Scope(once, "u1")
		if once != twice {
			t.Errorf("Scope is not idempotent for %q:\n once:  %q\n twice: %q", stmt, once, twice)
		}
	}
}

func TestScopeAddsExactlyOnePrincipalFilter(t *testing.T) {
	sanitizer := NewSanitizer(100)

	// Inputs without a principal-equality condition, including ones that
	// merely mention the column.
	statements := []string{
		"SELECT * FROM orders WHERE status='pending'",
		"SELECT * FROM orders",
		"SELECT user_id, total FROM orders",
		"SELECT * FROM orders ORDER BY user_id DESC",
	}

	for _, stmt := range statements {
		got := sanitizer.Scope(stmt, "u1")
		if n := len(principalFilterRe.FindAllString(got, -1)); n != 1 {
			t.Errorf("Scope(%q) = %q: expected exactly one principal-equality conjunct, got %d", stmt, got, n)
		}
		if !strings.Contains(got, "user_id = 'u1'") {
			t.Errorf("Scope(%q) = %q: principal filter missing", stmt, got)
		}
	}
}
