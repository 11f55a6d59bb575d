package review

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shrimpsizemoose/trekker/logger"
)

var moduleCodeRegex = regexp.MustCompile(`^[A-Z0-9]+$`)

const (
	maxModuleCodeLength = 20
	maxSearchTermLength = 200
)

// Sanitizer strips markup from user-supplied text before it is validated,
// stored, or forwarded to the moderation service.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Clean(text string) string {
	cleaned := s.policy.Sanitize(text)
	if cleaned != text {
		logger.Debug.Println("Sanitizer stripped markup from user input")
	}
	return strings.TrimSpace(cleaned)
}

// NormalizeModuleCode uppercases and validates a module code path parameter.
func NormalizeModuleCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", newValidationError("Module code is required")
	}
	if utf8.RuneCountInString(code) > maxModuleCodeLength {
		return "", newValidationError("Module code must not exceed %d characters", maxModuleCodeLength)
	}
	if !moduleCodeRegex.MatchString(code) {
		return "", newValidationError("Module code must contain only letters and digits")
	}
	return code, nil
}

func (e *Engine) normalizeSearchTerm(raw string) (string, error) {
	term := strings.TrimSpace(raw)
	if term == "" {
		return "", newValidationError("Search query is required")
	}
	// the frontend sends a bare asterisk to browse the full catalog
	if term == "*" {
		return "", nil
	}

	term = e.sanitizer.Clean(term)
	if term == "" {
		return "", newValidationError("Search query is required")
	}
	if utf8.RuneCountInString(term) > maxSearchTermLength {
		return "", newValidationError("Search query must not exceed %d characters", maxSearchTermLength)
	}
	return term, nil
}

func (e *Engine) validateComment(comment string) (string, error) {
	cleaned := e.sanitizer.Clean(comment)
	if cleaned == "" {
		return "", newValidationError("Review text is required")
	}

	length := utf8.RuneCountInString(cleaned)
	if length < e.policy.MinCommentLength {
		return "", newValidationError("Review must be at least %d characters long", e.policy.MinCommentLength)
	}
	if length > e.policy.MaxCommentLength {
		return "", newValidationError("Review must not exceed %d characters", e.policy.MaxCommentLength)
	}
	return cleaned, nil
}
