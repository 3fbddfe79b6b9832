// Package tagging writes ID3 metadata and cover art into downloaded audio.
//
// Tags are written with UTF-8 text encoding so Chinese titles round-trip.
// A file without any tag gets a fresh one. Saving goes through the ID3
// library's temp-file swap, so a failed save leaves the audio untouched.
package tagging
