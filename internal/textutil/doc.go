// Package textutil provides filename sanitization and small text helpers.
//
// Titles arriving from the content API are free-form Unicode, frequently
// Chinese, and may contain path separators or characters that common
// filesystems reject. SanitizeFileName normalizes them to NFC so the same
// title always maps to the same on-disk name, which the download workflow
// relies on when it uses path presence as its only completion marker.
package textutil
