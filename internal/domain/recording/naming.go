package recording

import (
	"fmt"
	"path"
	"time"
)

const (
	displayLayout = "2006-01-02 15:04:05"
	fileLayout    = "20060102150405"
	fileExt       = ".csv"
)

// Names derives the display name and artifact file name for a recording
// started at t. Display names sort in creation order.
func Names(t time.Time) (displayName, fileName string) {
	return t.Format(displayLayout), t.Format(fileLayout) + fileExt
}

// numberedNames is Names for the n-th recording started within the same
// second. The first keeps the plain names; later ones get a suffix that still
// sorts after the earlier names.
func numberedNames(t time.Time, n int) (displayName, fileName string) {
	if n <= 1 {
		return Names(t)
	}
	return fmt.Sprintf("%s (%d)", t.Format(displayLayout), n),
		fmt.Sprintf("%s-%d%s", t.Format(fileLayout), n, fileExt)
}

// RemotePath joins a remote root and a file name with forward slashes.
func RemotePath(root, fileName string) string {
	if root == "" {
		return ""
	}
	return path.Join(root, fileName)
}
