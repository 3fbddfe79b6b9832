package fetch

import "strings"

// StylesheetPath is the root-relative stylesheet transcript pages link to.
const StylesheetPath = "/assets/article/course.css"

// RewriteStylesheet makes every stylesheet reference in page absolute against
// assetBase. References that are already absolute are left as they are, so
// each reference ends up absolute exactly once.
func RewriteStylesheet(page, assetBase string) string {
	absolute := strings.TrimRight(assetBase, "/") + StylesheetPath
	const placeholder = "\x00vistopia-stylesheet\x00"
	page = strings.ReplaceAll(page, absolute, placeholder)
	page = strings.ReplaceAll(page, StylesheetPath, absolute)
	return strings.ReplaceAll(page, placeholder, absolute)
}
