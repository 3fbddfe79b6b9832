package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vistopia/internal/config"
	"vistopia/internal/deps"
	"vistopia/internal/services"
	"vistopia/internal/services/vistopia"
)

const apiCheckTimeout = 10 * time.Second

// CheckAPI verifies that the content API answers and, when a token is set,
// that it is accepted. It makes a single attempt.
func CheckAPI(ctx context.Context, baseURL, token string) Result {
	const name = "Content API"
	if strings.TrimSpace(baseURL) == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	client, err := vistopia.New(baseURL, token, vistopia.WithTimeout(apiCheckTimeout))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	checkCtx, cancel := context.WithTimeout(ctx, apiCheckTimeout)
	defer cancel()

	if strings.TrimSpace(token) == "" {
		if _, err := client.Search(checkCtx, "看理想"); err != nil && !errors.Is(err, services.ErrNotFound) {
			return Result{Name: name, Detail: summarizeAPIError(err)}
		}
		return Result{Name: name, Passed: true, Detail: "reachable (no token: free content only)"}
	}
	subs, err := client.Subscriptions(checkCtx)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return Result{Name: name, Detail: "token rejected or account has no subscriptions"}
		}
		return Result{Name: name, Detail: summarizeAPIError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("token accepted (%d subscriptions)", len(subs))}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOutputDirectory accepts a missing directory as long as its nearest
// existing ancestor is writable, since show directories are created on demand.
func CheckOutputDirectory(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	parent := filepath.Dir(filepath.Clean(path))
	for parent != filepath.Dir(parent) {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		parent = filepath.Dir(parent)
	}
	check := CheckDirectoryAccess(name, parent)
	if !check.Passed {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot be created under %s)", path, parent)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckReadableFile verifies that path is a readable regular file.
func CheckReadableFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckSystemDeps evaluates the external tools for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.ToolRequirements(cfg.Video.ConverterBinary, cfg.Archiver.Binary))
}

func summarizeAPIError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (API unreachable)"
	}
	return err.Error()
}
