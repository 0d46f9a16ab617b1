package sqlpipe

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	validator := NewValidator([]string{"orders"})

	tests := []struct {
		name          string
		statement     string
		wantValid     bool
		wantIssuePart string
	}{
		{
			name:      "plain select on allowed table",
			statement: "SELECT * FROM orders",
			wantValid: true,
		},
		{
			name:      "select with where and leading whitespace",
			statement: "   select id, status from orders where status = 'pending'",
			wantValid: true,
		},
		{
			name:          "delete statement",
			statement:     "DELETE FROM orders WHERE id=1",
			wantValid:     false,
			wantIssuePart: "DELETE",
		},
		{
			name:          "select hiding a drop",
			statement:     "SELECT * FROM orders; DROP TABLE orders",
			wantValid:     false,
			wantIssuePart: "DROP",
		},
		{
			name:          "update keyword mid-statement",
			statement:     "SELECT * FROM orders WHERE note = 'x' UPDATE orders",
			wantValid:     false,
			wantIssuePart: "UPDATE",
		},
		{
			name:          "table outside whitelist",
			statement:     "SELECT * FROM users",
			wantValid:     false,
			wantIssuePart: "users",
		},
		{
			name:          "join to table outside whitelist",
			statement:     "SELECT * FROM orders o JOIN accounts a ON a.id = o.account_id",
			wantValid:     false,
			wantIssuePart: "accounts",
		},
		{
			name:      "whitelist check is case-insensitive",
			statement: "SELECT * FROM Orders",
			wantValid: true,
		},
		{
			name:          "statement chaining via terminators",
			statement:     "SELECT 1;;",
			wantValid:     false,
			wantIssuePart: "terminators",
		},
		{
			name:      "single trailing terminator is fine",
			statement: "SELECT * FROM orders;",
			wantValid: true,
		},
		{
			name:          "exec keyword",
			statement:     "SELECT * FROM orders WHERE exec = 1",
			wantValid:     false,
			wantIssuePart: "EXEC",
		},
		{
			name:          "word merely starting with select",
			statement:     "selecting data from orders",
			wantValid:     false,
			wantIssuePart: "SELECT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := validator.Validate(tt.statement)

			if verdict.IsValid != tt.wantValid {
				t.Fatalf("Validate(%q).IsValid = %v, want %v (issues: %v)",
					tt.statement, verdict.IsValid, tt.wantValid, verdict.Issues)
			}

			if tt.wantValid {
				if verdict.Recommendation != RecommendationPassThrough {
					t.Errorf("valid statement got recommendation %q", verdict.Recommendation)
				}
				if len(verdict.Issues) != 0 {
					t.Errorf("valid statement got issues %v", verdict.Issues)
				}
				return
			}

			if verdict.Recommendation != RecommendationNeedsCorrection {
				t.Errorf("rejected statement got recommendation %q", verdict.Recommendation)
			}
			if len(verdict.Issues) == 0 {
				t.Fatal("rejected statement has no issues")
			}
			if !strings.Contains(verdict.Issues[0], tt.wantIssuePart) {
				t.Errorf("issue %q does not mention %q", verdict.Issues[0], tt.wantIssuePart)
			}
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	validator := NewValidator([]string{"orders"})
	statement := "SELECT * FROM orders"

	first := validator.Validate(statement)
	second := validator.Validate(statement)

	if first.IsValid != second.IsValid || len(first.Issues) != len(second.Issues) {
		t.Error("Validate is not deterministic for the same input")
	}
}
