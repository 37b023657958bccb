package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxProjectLength  = 128
	maxWorkflowIDLen  = 64
	maxSearchLength   = 256
	maxWorkflowIDList = 500
)

// ValidateProject validates a project name used as a storage scope and cache
// key component. It rejects names that could be used for path traversal.
func ValidateProject(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "project name cannot be empty")
	}
	if len(name) > maxProjectLength {
		return New(ErrCodeInvalidInput, "project name too long (max %d characters)", maxProjectLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "project name contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "project name contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// workflowIDRegex matches workflow identifiers as issued by schedulers:
// numeric ids, UUIDs or short slugs.
var workflowIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateWorkflowID validates a single workflow identifier.
func ValidateWorkflowID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "workflow id cannot be empty")
	}
	if len(id) > maxWorkflowIDLen {
		return New(ErrCodeInvalidInput, "workflow id too long (max %d characters)", maxWorkflowIDLen)
	}
	if !workflowIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid workflow id: %q", id)
	}
	return nil
}

// ValidateWorkflowIDs validates a non-empty list of workflow identifiers.
func ValidateWorkflowIDs(ids []string) error {
	if len(ids) == 0 {
		return New(ErrCodeInvalidInput, "at least one workflow id is required")
	}
	if len(ids) > maxWorkflowIDList {
		return New(ErrCodeInvalidInput, "too many workflow ids (max %d)", maxWorkflowIDList)
	}
	for _, id := range ids {
		if err := ValidateWorkflowID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSearch validates a workflow name search term. The empty term is
// allowed and matches every workflow.
func ValidateSearch(term string) error {
	if len(term) > maxSearchLength {
		return New(ErrCodeInvalidInput, "search term too long (max %d characters)", maxSearchLength)
	}
	for _, r := range term {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "search term contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates a file path given on the command line or in the
// configuration file.
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidConfig, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "path contains invalid characters")
		}
	}
	return nil
}

// ValidateURL validates a backend connection URI against the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes %v", schemes)
}
