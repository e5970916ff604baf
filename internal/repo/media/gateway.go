// Package media holds the MediaGateway implementations: S3, minio and a
// redis-backed listing cache that wraps either of them.
package media

import (
	"path"
	"strings"
)

const (
	// one bulk delete call, objects past this stay behind
	maxDeleteBatch = 500

	submissionsDir = "submissions/"
)

// dirPrefix turns a folder path into the key prefix of its children.
func dirPrefix(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/"
}

func objectKey(folder, name string) string {
	return dirPrefix(folder) + name
}

func objectURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + key
}

// formatOf is the lower-cased extension without its dot, e.g. "jpg".
func formatOf(key string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
}

// folderName is the last path segment of a common prefix like "users/jane/".
func folderName(prefix string) string {
	return path.Base(strings.TrimSuffix(prefix, "/"))
}
