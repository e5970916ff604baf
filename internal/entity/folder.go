package entity

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UsersRoot         = "users/"
	submissionsFolder = "submissions"
)

var (
	unsafeRunes      = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	submissionFolder = regexp.MustCompile(`^users/[a-zA-Z0-9_-]+/submissions/[a-zA-Z0-9_-]+$`)
)

// SanitizeIdentifier maps every rune outside [A-Za-z0-9_-] to '_'.
func SanitizeIdentifier(s string) string {
	return unsafeRunes.ReplaceAllString(s, "_")
}

// UserFolder is users/{sanitized user}.
func UserFolder(user string) string {
	return UsersRoot + SanitizeIdentifier(user)
}

// SubmissionFolder is users/{sanitized user}/submissions/{sanitized id}.
func SubmissionFolder(user, submissionID string) string {
	return fmt.Sprintf("%s/%s/%s", UserFolder(user), submissionsFolder, SanitizeIdentifier(submissionID))
}

// ValidateFolderPath accepts exactly the users/*/submissions/* shape.
func ValidateFolderPath(path string) bool {
	return submissionFolder.MatchString(path)
}

// ObjectName is image_{index}{ext}, ext lower-cased with its leading dot.
func ObjectName(index int, ext string) string {
	return fmt.Sprintf("image_%d%s", index, strings.ToLower(ext))
}
