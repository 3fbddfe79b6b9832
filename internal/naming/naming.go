// Package naming derives track numbers and on-disk names for saved articles.
package naming

import (
	"fmt"
	"strconv"

	"vistopia/internal/textutil"
)

// TrackNumber zero-pads ordinal to the digit count of total, so every track
// number of one catalog has the same width and sorts as a plain string.
func TrackNumber(ordinal, total int) string {
	width := len(strconv.Itoa(max(total, 1)))
	return fmt.Sprintf("%0*d", width, ordinal)
}

// FileName builds the file name for an article: the sanitized title plus ext,
// prefixed with "<track>_" when prefix is set.
func FileName(title, ext, track string, prefix bool) string {
	name := textutil.SanitizeFileName(title) + ext
	if prefix && track != "" {
		return track + "_" + name
	}
	return name
}

// ShowDirName is the directory name for a show.
func ShowDirName(catalogTitle string) string {
	return textutil.SanitizeFileName(catalogTitle)
}
