package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"vistopia/internal/config"
	"vistopia/internal/testsupport"
)

var transcriptPage = `<html><head><title>第一期</title>
<link rel="stylesheet" href="/assets/article/course.css"></head>
<body><article><h1>第一期</h1>` +
	strings.Repeat("<p>这是一段足够长的正文内容，用来确保可读性提取能够识别出文章主体，而不是把页面当成空白。</p>\n", 12) +
	`</article></body></html>`

type cliTestEnv struct {
	server     *httptest.Server
	cfg        *config.Config
	configPath string
	outputDir  string

	mu   sync.Mutex
	hits map[string]int
}

func (e *cliTestEnv) hit(path string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits[path]
}

// testConverter never exists on PATH unless a test stubs it.
const testConverter = "vistopia-test-converter"

// setupCLITestEnv starts a fake content API and writes a config file that
// points at it. HOME and the working directory are isolated per test.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.TokenEnvVar, "")
	t.Chdir(home)

	env := &cliTestEnv{hits: map[string]int{}}
	env.server = httptest.NewServer(http.HandlerFunc(env.handle))
	t.Cleanup(env.server.Close)

	base := []testsupport.ConfigOption{
		testsupport.WithAPI(env.server.URL),
		testsupport.WithConverter(testConverter),
	}
	cfg := testsupport.NewConfig(t, append(base, opts...)...)
	env.cfg = cfg
	env.outputDir = cfg.Paths.OutputDir
	env.configPath = filepath.Join(testsupport.BaseDir(cfg), "vistopia.toml")
	testsupport.WriteConfigFile(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) handle(w http.ResponseWriter, r *http.Request) {
	e.mu.Lock()
	e.hits[r.URL.Path]++
	e.mu.Unlock()

	base := e.server.URL
	switch r.URL.Path {
	case "/api/v1/content/catalog/7":
		fmt.Fprintf(w, `{"status":"success","data":{"title":"测试系列","author":"测试作者","type":"free","catalog":[{"part":[
			{"article_id":"1","title":"第一期","sort_number":"1","duration_str":"12:34","content_url":"%[1]s/page/1.html","media_key_full_url":"%[1]s/audio/1.mp3"},
			{"article_id":"2","title":"第二期","sort_number":"2","duration_str":"08:00","content_url":"%[1]s/page/2.html","media_key_full_url":"%[1]s/audio/2.mp3"}
		]}]}}`, base)
	case "/api/v1/content/catalog/404":
		fmt.Fprint(w, `{"status":"fail","msg":"not found"}`)
	case "/api/v1/content/catalog/500":
		w.WriteHeader(http.StatusInternalServerError)
	case "/api/v1/content/content-show/7":
		fmt.Fprint(w, `{"status":"success","data":{"title":"测试系列","author":"测试作者"}}`)
	case "/api/v1/search/web":
		fmt.Fprint(w, `{"status":"success","data":{"data":[
			{"id":"7","data_type":"content","title":"测试系列","subtitle":"副标题","author":"测试作者","share_desc":"一个节目"},
			{"id":"99","data_type":"article","title":"不该出现的文章"}
		]}}`)
	case "/api/v1/user/subscriptions-list":
		fmt.Fprint(w, `{"status":"success","data":{"data":[{"content_id":"7","title":"测试系列","subtitle":"副标题"}]}}`)
	case "/audio/1.mp3", "/audio/2.mp3":
		w.Write(testsupport.FakeMP3())
	case "/page/1.html", "/page/2.html":
		fmt.Fprint(w, transcriptPage)
	default:
		http.NotFound(w, r)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if env != nil {
		flags = []string{"--config", env.configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
