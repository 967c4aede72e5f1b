package core

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/huangsam/csmstyle/schema"
)

// keyPattern splits a key on the first ":<digits>:" after a non-empty path.
// Paths containing such a sequence themselves decode wrongly; membership
// checks never decode, so only display and re-check targeting are affected.
var keyPattern = regexp.MustCompile(`^(.+?):(\d+):(.*)$`)

// ViolationKey derives the suppression identity of a finding.
// The colon-joined form is what existing workspaces have persisted, so it is
// never normalized or escaped.
func ViolationKey(path string, line int, message string) string {
	return path + ":" + strconv.Itoa(line) + ":" + message
}

// DecodeViolationKey recovers the path, line, and message from a key.
func DecodeViolationKey(key string) (schema.ViolationEntry, error) {
	match := keyPattern.FindStringSubmatch(key)
	if match == nil {
		return schema.ViolationEntry{}, fmt.Errorf("malformed violation key %q", key)
	}
	line, err := strconv.Atoi(match[2])
	if err != nil {
		return schema.ViolationEntry{}, fmt.Errorf("malformed line in violation key %q: %w", key, err)
	}
	return schema.ViolationEntry{
		Key:     key,
		Path:    match[1],
		Line:    line,
		Message: match[3],
	}, nil
}
