package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/casaops/taskwright/internal/domain/task"
)

// Generator derives an ordered Plan from a task's free-text requirements.
// Generation is pure: no side effects, and it never fails. A requirement
// that cannot be classified degrades to a diagnostic shell step, so plan
// quality problems surface at execution time, not generation time.
type Generator struct{}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate produces a Plan for the task. The result always contains at
// least one step.
func (g *Generator) Generate(t *task.Task) *Plan {
	steps := make([]Step, 0, len(t.Requirements))
	for _, req := range t.Requirements {
		steps = append(steps, Classify(req))
	}

	if len(steps) == 0 {
		steps = append(steps, diagnosticStep(t.Objective))
	}

	rollback := false
	for _, s := range steps {
		if s.Kind() == KindBackup {
			rollback = true
			break
		}
	}

	return NewPlan(t.ID, t.Objective, steps, t.Constraints, rollback)
}

// Classify maps one free-text requirement onto a typed Step.
// The match is a shallow keyword scan; a miss falls back to a diagnostic
// shell step rather than erroring.
func Classify(requirement string) Step {
	req := strings.TrimSpace(requirement)
	lower := strings.ToLower(req)
	path := extractPath(req)

	switch {
	case containsAny(lower, "backup", "snapshot"):
		if path == "" {
			return diagnosticStep(req)
		}
		return NewBackupStep(path, req)

	case containsAny(lower, "create", "write") && path != "":
		return NewFileCreateStep(path, extractContent(req), req)

	case containsAny(lower, "modify", "update", "replace", "patch", "append") && path != "":
		match, replacement := extractSubstitution(req)
		return NewFileModifyStep(path, match, replacement, req)

	case containsAny(lower, "test", "verify", "assert", "validate", "check"):
		if cmd := extractCommand(req); cmd != "" {
			return NewTestStep(cmd, req)
		}
		return diagnosticStep(req)

	case containsAny(lower, "execute ", "run ", "invoke "):
		if cmd := extractCommand(req); cmd != "" {
			return NewShellStep(cmd, req)
		}
		return diagnosticStep(req)

	default:
		return diagnosticStep(req)
	}
}

// diagnosticStep is the classification-miss fallback: a harmless shell step
// that records the requirement in the execution log.
func diagnosticStep(requirement string) ShellStep {
	cmd := fmt.Sprintf("echo %s", strconv.Quote("unclassified requirement: "+requirement))
	return NewShellStep(cmd, fmt.Sprintf("Diagnostic step for requirement: %s", requirement))
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// extractPath returns the first path-like token in the requirement, or "".
func extractPath(req string) string {
	for _, field := range strings.Fields(req) {
		token := strings.Trim(field, `"'`+"`"+`.,;:()`)
		if token == "" || token == "/" {
			continue
		}
		if strings.HasPrefix(token, "/") || strings.HasPrefix(token, "./") || strings.HasPrefix(token, "~/") {
			return token
		}
	}
	return ""
}

// extractContent pulls explicit file content from a create requirement.
// It looks for the text after "with content", "containing" or "with";
// absent those, it falls back to content referencing the requirement.
func extractContent(req string) string {
	for _, marker := range []string{" with content ", " containing ", " with "} {
		if idx := indexFold(req, marker); idx >= 0 {
			content := strings.TrimSpace(req[idx+len(marker):])
			return strings.Trim(content, `"'`+"`")
		}
	}
	return fmt.Sprintf("Generated for requirement: %s\n", req)
}

// extractSubstitution parses "replace OLD with NEW" out of a modify
// requirement. With no parsable pair the step degrades to append mode:
// empty match, requirement-derived replacement.
func extractSubstitution(req string) (match, replacement string) {
	lower := strings.ToLower(req)
	replIdx := strings.Index(lower, "replace ")
	withIdx := -1
	if replIdx >= 0 {
		if rel := indexFold(req[replIdx:], " with "); rel >= 0 {
			withIdx = replIdx + rel
		}
	}

	if replIdx >= 0 && withIdx > replIdx {
		match = strings.TrimSpace(req[replIdx+len("replace ") : withIdx])
		rest := req[withIdx+len(" with "):]
		if inIdx := indexFold(rest, " in "); inIdx >= 0 {
			rest = rest[:inIdx]
		}
		replacement = strings.TrimSpace(rest)
		return trimQuotes(match), trimQuotes(replacement)
	}

	return "", fmt.Sprintf("# %s\n", req)
}

// extractCommand returns the text after the first command marker keyword,
// preserving its original casing.
func extractCommand(req string) string {
	lower := strings.ToLower(req)
	markers := []string{"execute ", "running ", "run ", "invoke ", "using ", "via "}
	for _, marker := range markers {
		if idx := strings.Index(lower, marker); idx >= 0 {
			cmd := strings.TrimSpace(req[idx+len(marker):])
			if cmd != "" {
				return trimQuotes(cmd)
			}
		}
	}
	return ""
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`+"`")
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, sub string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(sub))
}
