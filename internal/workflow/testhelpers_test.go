package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vistopia/internal/fetch"
	"vistopia/internal/logging"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
	"vistopia/internal/tagging"
	"vistopia/internal/workflow"
)

type stubCatalogs struct {
	mu          sync.Mutex
	catalogs    map[int64]*vistopia.Catalog
	catalogErr  map[int64]error
	series      map[int64]*vistopia.Series
	seriesErr   error
	subs        []vistopia.Subscription
	seriesCalls int
}

func (s *stubCatalogs) Catalog(_ context.Context, id int64) (*vistopia.Catalog, error) {
	if err := s.catalogErr[id]; err != nil {
		return nil, err
	}
	catalog, ok := s.catalogs[id]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "stub", "catalog", fmt.Sprint(id), nil)
	}
	return catalog, nil
}

func (s *stubCatalogs) ContentShow(_ context.Context, id int64) (*vistopia.Series, error) {
	s.mu.Lock()
	s.seriesCalls++
	s.mu.Unlock()
	if s.seriesErr != nil {
		return nil, s.seriesErr
	}
	if series, ok := s.series[id]; ok {
		return series, nil
	}
	return nil, services.Wrap(services.ErrNotFound, "stub", "series", fmt.Sprint(id), nil)
}

func (s *stubCatalogs) Subscriptions(context.Context) ([]vistopia.Subscription, error) {
	return s.subs, nil
}

type fetchCall struct {
	kind string
	link string
	dest string
}

// stubFetcher writes a placeholder file for every successful call so the
// existence check behaves like the real fetcher.
type stubFetcher struct {
	mu        sync.Mutex
	calls     []fetchCall
	fail      map[string]error
	panicOn   string
	delay     time.Duration
	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *stubFetcher) do(kind, link, dest string) (fetch.Status, error) {
	if _, err := os.Stat(dest); err == nil {
		return fetch.StatusExists, nil
	}
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{kind: kind, link: link, dest: dest})
	f.mu.Unlock()

	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		peak := f.maxActive.Load()
		if n <= peak || f.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.panicOn != "" && link == f.panicOn {
		panic("boom")
	}
	if err := f.fail[link]; err != nil {
		return fetch.StatusSaved, err
	}
	if err := os.WriteFile(dest, []byte(kind), 0o644); err != nil {
		return fetch.StatusSaved, err
	}
	return fetch.StatusSaved, nil
}

func (f *stubFetcher) Audio(_ context.Context, link, dest string) (fetch.Status, error) {
	return f.do("audio", link, dest)
}

func (f *stubFetcher) Video(_ context.Context, link, dest string) (fetch.Status, error) {
	return f.do("video", link, dest)
}

func (f *stubFetcher) Transcript(_ context.Context, link, dest string) (fetch.Status, error) {
	return f.do("transcript", link, dest)
}

func (f *stubFetcher) TranscriptText(_ context.Context, link, dest string) (fetch.Status, error) {
	return f.do("text", link, dest)
}

func (f *stubFetcher) Archive(_ context.Context, _ string, articleID, dest, _ string) (fetch.Status, error) {
	return f.do("archive", articleID, dest)
}

func (f *stubFetcher) snapshot() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchCall(nil), f.calls...)
}

type tagCall struct {
	path   string
	fields tagging.Fields
}

type stubTagger struct {
	mu       sync.Mutex
	tags     []tagCall
	covers   []string
	tagErr   error
	coverErr error
}

func (s *stubTagger) Tag(path string, fields tagging.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tagCall{path: path, fields: fields})
	return s.tagErr
}

func (s *stubTagger) TagCover(_ context.Context, path, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.covers = append(s.covers, path)
	return s.coverErr
}

// buildCatalog splits count audio articles over parts of partSize.
func buildCatalog(title string, count, partSize int) *vistopia.Catalog {
	catalog := &vistopia.Catalog{
		Title:           title,
		Author:          "目录作者",
		BackgroundImage: "https://cdn.example/cover.jpg",
	}
	var part vistopia.Part
	for i := 1; i <= count; i++ {
		part.Articles = append(part.Articles, vistopia.Article{
			ArticleID:       fmt.Sprint(1000 + i),
			Title:           fmt.Sprintf("第%d期", i),
			SortNumber:      vistopia.FlexInt(i),
			ContentURL:      fmt.Sprintf("https://cdn.example/article/%d.html", i),
			MediaKeyFullURL: fmt.Sprintf("https://cdn.example/audio/%d.mp3", i),
		})
		if len(part.Articles) == partSize {
			catalog.Parts = append(catalog.Parts, part)
			part = vistopia.Part{}
		}
	}
	if len(part.Articles) > 0 {
		catalog.Parts = append(catalog.Parts, part)
	}
	return catalog
}

type harness struct {
	catalogs *stubCatalogs
	fetcher  *stubFetcher
	tagger   *stubTagger
	manager  *workflow.Manager
	out      string
	lockDir  string
}

func newHarness(t *testing.T, catalogs map[int64]*vistopia.Catalog, opts ...workflow.ManagerOption) *harness {
	t.Helper()
	base := t.TempDir()
	h := &harness{
		catalogs: &stubCatalogs{
			catalogs: catalogs,
			series:   map[int64]*vistopia.Series{},
		},
		fetcher: &stubFetcher{},
		tagger:  &stubTagger{},
		out:     filepath.Join(base, "out"),
		lockDir: filepath.Join(base, "locks"),
	}
	all := append([]workflow.ManagerOption{
		workflow.WithOutputDir(h.out),
		workflow.WithLockDir(h.lockDir),
	}, opts...)
	h.manager = workflow.NewManager(h.catalogs, h.fetcher, h.tagger, logging.NewNop(), all...)
	return h
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

var errBoom = errors.New("boom")
