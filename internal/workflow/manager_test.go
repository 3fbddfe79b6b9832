package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vistopia/internal/episodes"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
	"vistopia/internal/showlock"
	"vistopia/internal/workflow"
)

func TestSaveShowUsesUniformTrackNumbers(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 12, 5)})
	h.catalogs.series[7] = &vistopia.Series{Title: "系列标题", Author: "系列作者"}

	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{PrefixIndex: true})
	requireNoError(t, err)
	if report.Saved != 12 || report.Failed != 0 || report.Skipped != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	names := listDir(t, filepath.Join(h.out, "测试系列"))
	if len(names) != 12 {
		t.Fatalf("expected 12 files, got %v", names)
	}
	for i, name := range names {
		want := fmt.Sprintf("%02d_", i+1)
		if !strings.HasPrefix(name, want) || !strings.HasSuffix(name, ".mp3") {
			t.Fatalf("file %d = %q, want prefix %q and .mp3", i, name, want)
		}
	}

	if len(h.tagger.tags) != 12 {
		t.Fatalf("expected 12 tag writes, got %d", len(h.tagger.tags))
	}
	for i, call := range h.tagger.tags {
		if call.fields.Track != fmt.Sprintf("%02d", i+1) {
			t.Fatalf("tag %d track = %q", i, call.fields.Track)
		}
		if call.fields.Album != "系列标题" || call.fields.Artist != "系列作者" {
			t.Fatalf("tag %d album/artist = %q/%q", i, call.fields.Album, call.fields.Artist)
		}
	}
	if h.catalogs.seriesCalls != 1 {
		t.Fatalf("expected series fetched once, got %d", h.catalogs.seriesCalls)
	}
	if len(h.tagger.covers) != 12 {
		t.Fatalf("expected cover on every new file, got %d", len(h.tagger.covers))
	}
}

func TestSaveShowEpisodeFilter(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 12, 5)})

	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{
		Episodes:    episodes.Of(1),
		PrefixIndex: true,
	})
	requireNoError(t, err)
	if report.Saved != 1 {
		t.Fatalf("expected one saved episode, got %+v", report)
	}
	calls := h.fetcher.snapshot()
	if len(calls) != 1 || calls[0].link != "https://cdn.example/audio/1.mp3" {
		t.Fatalf("unexpected fetch calls: %+v", calls)
	}
	if got := filepath.Base(calls[0].dest); got != "01_第1期.mp3" {
		t.Fatalf("dest = %q", got)
	}
}

func TestSaveShowTrackOrdinalCountsSelectedArticles(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 12, 5)})

	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{Episodes: episodes.Of(4, 9)})
	requireNoError(t, err)
	if len(h.tagger.tags) != 2 {
		t.Fatalf("expected two tag writes, got %d", len(h.tagger.tags))
	}
	if h.tagger.tags[0].fields.Track != "01" || h.tagger.tags[1].fields.Track != "02" {
		t.Fatalf("tracks = %q, %q", h.tagger.tags[0].fields.Track, h.tagger.tags[1].fields.Track)
	}
}

func TestSaveShowSecondRunSkipsEverything(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 3, 3)})

	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	tagsAfterFirst := len(h.tagger.tags)

	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	if report.Skipped != 3 || report.Saved != 0 {
		t.Fatalf("second run report: %+v", report)
	}
	if len(h.fetcher.snapshot()) != 3 {
		t.Fatalf("expected no new fetches, got %d total", len(h.fetcher.snapshot()))
	}
	if len(h.tagger.tags) != tagsAfterFirst {
		t.Fatal("existing files must not be retagged")
	}
}

func TestSaveShowSkipsMissingCatalog(t *testing.T) {
	h := newHarness(t, nil)

	report, err := h.manager.SaveShow(context.Background(), 99, workflow.ShowOptions{})
	if err != nil {
		t.Fatalf("expected missing catalog to be skipped, got %v", err)
	}
	if report.Shows != 0 || len(h.fetcher.snapshot()) != 0 {
		t.Fatalf("expected no work, got report %+v", report)
	}
}

func TestSaveShowReturnsCatalogTransportError(t *testing.T) {
	h := newHarness(t, nil)
	h.catalogs.catalogErr = map[int64]error{
		5: services.Wrap(services.ErrTransport, "stub", "catalog", "", errBoom),
	}

	_, err := h.manager.SaveShow(context.Background(), 5, workflow.ShowOptions{})
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestSaveShowFallsBackToCatalogMetadata(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 2, 2)})
	h.catalogs.seriesErr = services.Wrap(services.ErrTransport, "stub", "series", "", errBoom)

	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	for _, call := range h.tagger.tags {
		if call.fields.Album != "测试系列" || call.fields.Artist != "目录作者" {
			t.Fatalf("expected catalog fallback, got %+v", call.fields)
		}
	}
}

func TestSaveShowCountsUnresolvedMedia(t *testing.T) {
	catalog := buildCatalog("测试系列", 3, 3)
	catalog.Parts[0].Articles[1].MediaKeyFullURL = ""

	h := newHarness(t, map[int64]*vistopia.Catalog{7: catalog})
	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	if report.Saved != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if !errors.Is(report.Failures[0].Err, services.ErrMediaUnresolved) || report.Failures[0].SortNumber != 2 {
		t.Fatalf("unexpected failure: %+v", report.Failures[0])
	}
}

func TestSaveShowKeepsFileWhenTaggingFails(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 1, 1)})
	h.tagger.tagErr = services.Wrap(services.ErrTagWrite, "stub", "tag", "", errBoom)
	h.tagger.coverErr = services.Wrap(services.ErrTagWrite, "stub", "cover", "", errBoom)

	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	if report.Saved != 1 || report.Failed != 0 {
		t.Fatalf("tag failure must not fail the episode: %+v", report)
	}
	if names := listDir(t, filepath.Join(h.out, "测试系列")); len(names) != 1 {
		t.Fatalf("expected media file kept, got %v", names)
	}
}

func TestSaveShowNoTagNoCover(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 2, 2)})

	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{NoTag: true, NoCover: true})
	requireNoError(t, err)
	if len(h.tagger.tags) != 0 || len(h.tagger.covers) != 0 {
		t.Fatalf("expected no tagging, got %d tags %d covers", len(h.tagger.tags), len(h.tagger.covers))
	}
	if h.catalogs.seriesCalls != 0 {
		t.Fatal("series must not be fetched when tagging is disabled")
	}
}

func TestSaveShowVideoIsNotTagged(t *testing.T) {
	catalog := buildCatalog("视频节目", 2, 2)
	catalog.Parts[0].Articles[0].MediaKeyFullURL = "https://cdn.example/video/1.m3u8"

	h := newHarness(t, map[int64]*vistopia.Catalog{7: catalog})
	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)

	calls := h.fetcher.snapshot()
	if calls[0].kind != "video" || filepath.Ext(calls[0].dest) != ".mp4" {
		t.Fatalf("expected video call to .mp4, got %+v", calls[0])
	}
	if len(h.tagger.tags) != 1 || h.tagger.tags[0].path != calls[1].dest {
		t.Fatalf("expected only the audio episode tagged, got %+v", h.tagger.tags)
	}
}

func TestSaveShowFetchFailureContinues(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 3, 3)})
	h.fetcher.fail = map[string]error{
		"https://cdn.example/audio/2.mp3": services.Wrap(services.ErrTransport, "stub", "audio", "", errBoom),
	}

	report, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	if report.Saved != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestSaveShowFailsWhenShowLocked(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 1, 1)})
	lock, err := showlock.Acquire(h.lockDir, 7)
	requireNoError(t, err)
	t.Cleanup(func() { _ = lock.Release() })

	_, err = h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	if !errors.Is(err, showlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
	if len(h.fetcher.snapshot()) != 0 {
		t.Fatal("no fetches expected while locked")
	}
}

func TestSaveShowReleasesLock(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 1, 1)})
	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)

	lock, err := showlock.Acquire(h.lockDir, 7)
	if err != nil {
		t.Fatalf("lock should be free after SaveShow: %v", err)
	}
	_ = lock.Release()
}

func TestSaveTranscriptFormats(t *testing.T) {
	tests := []struct {
		format workflow.Format
		kind   string
		ext    string
	}{
		{workflow.FormatHTML, "transcript", ".html"},
		{workflow.FormatText, "text", ".txt"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 2, 2)})
			report, err := h.manager.SaveTranscript(context.Background(), 7, workflow.TranscriptOptions{Format: tt.format})
			requireNoError(t, err)
			if report.Saved != 2 {
				t.Fatalf("unexpected report: %+v", report)
			}
			for _, call := range h.fetcher.snapshot() {
				if call.kind != tt.kind || filepath.Ext(call.dest) != tt.ext {
					t.Fatalf("unexpected call %+v", call)
				}
				if !strings.HasPrefix(call.link, "https://cdn.example/article/") {
					t.Fatalf("expected content url, got %q", call.link)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]workflow.Format{"": workflow.FormatHTML, "HTML": workflow.FormatHTML, "text": workflow.FormatText, "txt": workflow.FormatText} {
		got, err := workflow.ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := workflow.ParseFormat("pdf"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestArchivePoolIsBoundedAndIsolatesFailures(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 9, 4)})
	h.fetcher.delay = 20 * time.Millisecond
	h.fetcher.panicOn = "1003"
	h.fetcher.fail = map[string]error{
		"1005": services.Wrap(services.ErrExternalTool, "stub", "archive", "", errBoom),
	}

	report, err := h.manager.SaveTranscriptWithSingleFile(context.Background(), 7, workflow.ArchiveOptions{
		Binary:     "/usr/bin/single-file",
		CookieFile: "cookies.txt",
	})
	requireNoError(t, err)
	if report.Saved != 7 || report.Failed != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(h.fetcher.snapshot()) != 9 {
		t.Fatalf("expected every article attempted, got %d", len(h.fetcher.snapshot()))
	}
	if peak := h.fetcher.maxActive.Load(); peak > workflow.DefaultWorkers || peak < 2 {
		t.Fatalf("expected between 2 and %d concurrent workers, saw %d", workflow.DefaultWorkers, peak)
	}
}

func TestArchiveRequiresBinary(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 1, 1)})
	_, err := h.manager.SaveTranscriptWithSingleFile(context.Background(), 7, workflow.ArchiveOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBatchSaveContinuesAfterShowFailure(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{
		2: buildCatalog("第二个节目", 2, 2),
	})
	h.catalogs.catalogErr = map[int64]error{
		1: services.Wrap(services.ErrTransport, "stub", "catalog", "", errBoom),
	}

	report, err := h.manager.BatchSave(context.Background(), []int64{1, 2, 3}, workflow.BatchOptions{Transcript: true})
	requireNoError(t, err)
	if report.Shows != 1 {
		t.Fatalf("expected one show processed, got %+v", report)
	}
	if report.Saved != 4 {
		t.Fatalf("expected audio and transcripts saved, got %+v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].ShowID != 1 {
		t.Fatalf("expected show 1 recorded as failed, got %+v", report.Failures)
	}
}

func TestBatchSaveTranscriptOnly(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{2: buildCatalog("节目", 2, 2)})

	report, err := h.manager.BatchSave(context.Background(), []int64{2}, workflow.BatchOptions{NoAudio: true, Transcript: true})
	requireNoError(t, err)
	if report.Shows != 1 || report.Saved != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	for _, call := range h.fetcher.snapshot() {
		if call.kind != "transcript" {
			t.Fatalf("expected transcript calls only, got %+v", call)
		}
	}
}

func TestSubscribedIDs(t *testing.T) {
	h := newHarness(t, nil)
	h.catalogs.subs = []vistopia.Subscription{{ContentID: 3}, {ContentID: 8}, {ContentID: 3}}

	ids, err := h.manager.SubscribedIDs(context.Background())
	requireNoError(t, err)
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 8 {
		t.Fatalf("ids = %v", ids)
	}
}

func TestSaveShowRemovesPartialDownloads(t *testing.T) {
	h := newHarness(t, map[int64]*vistopia.Catalog{7: buildCatalog("测试系列", 1, 1)})
	dir := filepath.Join(h.out, "测试系列")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	partial := filepath.Join(dir, ".第1期.mp3.42.part")
	if err := os.WriteFile(partial, []byte("half"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := h.manager.SaveShow(context.Background(), 7, workflow.ShowOptions{})
	requireNoError(t, err)
	if _, err := os.Stat(partial); !os.IsNotExist(err) {
		t.Fatal("expected partial download removed while the show lock is held")
	}
}
