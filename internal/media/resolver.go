// Package media decides where an article's media lives and what kind it is.
package media

import (
	"net/url"
	"strings"

	"vistopia/internal/services/vistopia"
)

// Kind distinguishes audio downloads from video remuxes.
type Kind int

const (
	KindAudio Kind = iota
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "audio"
}

// Extension is the on-disk extension for the kind, independent of the
// upstream container.
func (k Kind) Extension() string {
	if k == KindVideo {
		return ".mp4"
	}
	return ".mp3"
}

// Media is a resolved media location.
type Media struct {
	URL  string
	Kind Kind
}

// Resolve picks the article's media URL: the direct full URL when present,
// otherwise the first media file's URL. It reports false when neither exists.
func Resolve(article vistopia.Article) (Media, bool) {
	link := strings.TrimSpace(article.MediaKeyFullURL)
	if link == "" && len(article.MediaFiles) > 0 {
		link = strings.TrimSpace(article.MediaFiles[0].MediaKeyFullURL)
	}
	if link == "" {
		return Media{}, false
	}
	return Media{URL: link, Kind: KindOf(link)}, true
}

// KindOf classifies a URL by suffix: .m3u8 and .mp4 are video, anything else
// is audio. Query strings and fragments are ignored.
func KindOf(link string) Kind {
	path := link
	if parsed, err := url.Parse(link); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	path = strings.ToLower(path)
	if strings.HasSuffix(path, ".m3u8") || strings.HasSuffix(path, ".mp4") {
		return KindVideo
	}
	return KindAudio
}
