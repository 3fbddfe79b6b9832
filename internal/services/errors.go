package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransport       = errors.New("transport error")
	ErrNotFound        = errors.New("not found")
	ErrDecode          = errors.New("decode error")
	ErrMediaUnresolved = errors.New("media unresolved")
	ErrToolMissing     = errors.New("external tool missing")
	ErrExternalTool    = errors.New("external tool error")
	ErrTimeout         = errors.New("timeout")
	ErrTagWrite        = errors.New("tag write error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Scope describes how far a failure propagates.
type Scope int

const (
	// ScopeArticle failures are logged and the batch moves to the next article.
	ScopeArticle Scope = iota
	// ScopeShow failures skip the remaining work for one show.
	ScopeShow
	// ScopeRun failures stop the command.
	ScopeRun
)

// FailureScope maps an error to how much work it should abandon.
func FailureScope(err error) Scope {
	switch {
	case err == nil:
		return ScopeArticle
	case errors.Is(err, ErrConfiguration):
		return ScopeRun
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrDecode):
		return ScopeShow
	default:
		return ScopeArticle
	}
}

// Hint returns a short operator-facing next step for the error class.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrToolMissing):
		return "install the missing tool and make sure it is on PATH"
	case errors.Is(err, ErrTimeout):
		return "check the network connection or raise the timeout"
	case errors.Is(err, ErrTransport):
		return "check the network connection and API token"
	case errors.Is(err, ErrNotFound):
		return "verify the content id exists and the token can access it"
	case errors.Is(err, ErrMediaUnresolved):
		return "the episode has no downloadable media for this account"
	case errors.Is(err, ErrTagWrite):
		return "media file kept; re-run with --no-tag or fix file permissions"
	default:
		return "check logs for details"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
