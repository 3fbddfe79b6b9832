package media

import (
	"testing"

	"vistopia/internal/services/vistopia"
)

func TestResolvePrefersDirectURL(t *testing.T) {
	article := vistopia.Article{
		MediaKeyFullURL: "https://cdn.example/a.mp3",
		MediaFiles:      []vistopia.MediaFile{{MediaKeyFullURL: "https://cdn.example/b.m3u8"}},
	}
	got, ok := Resolve(article)
	if !ok {
		t.Fatal("expected media")
	}
	if got.URL != "https://cdn.example/a.mp3" || got.Kind != KindAudio {
		t.Fatalf("unexpected media: %+v", got)
	}
}

func TestResolveFallsBackToFirstMediaFile(t *testing.T) {
	article := vistopia.Article{
		MediaFiles: []vistopia.MediaFile{
			{MediaKeyFullURL: "https://cdn.example/b.m3u8"},
			{MediaKeyFullURL: "https://cdn.example/c.mp3"},
		},
	}
	got, ok := Resolve(article)
	if !ok {
		t.Fatal("expected media")
	}
	if got.URL != "https://cdn.example/b.m3u8" || got.Kind != KindVideo {
		t.Fatalf("unexpected media: %+v", got)
	}
	if got.Kind.Extension() != ".mp4" {
		t.Fatalf("unexpected extension %q", got.Kind.Extension())
	}
}

func TestResolveReportsMissingMedia(t *testing.T) {
	if _, ok := Resolve(vistopia.Article{MediaFiles: []vistopia.MediaFile{{}}}); ok {
		t.Fatal("expected no media")
	}
	if _, ok := Resolve(vistopia.Article{}); ok {
		t.Fatal("expected no media")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		link string
		want Kind
	}{
		{"https://cdn.example/a.mp3", KindAudio},
		{"https://cdn.example/a.m4a", KindAudio},
		{"https://cdn.example/a.mp4", KindVideo},
		{"https://cdn.example/a.m3u8?token=abc", KindVideo},
		{"https://cdn.example/a.MP4", KindVideo},
		{"https://cdn.example/a.mp3?x=.mp4", KindAudio},
	}
	for _, tt := range tests {
		if got := KindOf(tt.link); got != tt.want {
			t.Fatalf("KindOf(%q) = %v, want %v", tt.link, got, tt.want)
		}
	}
}
