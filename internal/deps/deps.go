// Package deps reports on the external programs vistopia shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external program and why vistopia may run it.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status is the outcome of checking one Requirement.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// LookPathFunc resolves a command name to an executable path.
type LookPathFunc func(string) (string, error)

// Check resolves the requirement's command with lookPath (exec.LookPath when nil).
func (r Requirement) Check(lookPath LookPathFunc) Status {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	r.Command = strings.TrimSpace(r.Command)
	r.Description = strings.TrimSpace(r.Description)
	status := Status{Requirement: r}
	if r.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := lookPath(r.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", r.Command)
		return status
	}
	status.Path = path
	status.Available = true
	return status
}

// CheckBinaries checks every requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		results[i] = req.Check(nil)
	}
	return results
}

// ToolRequirements lists the converter used for video episodes and, when
// configured, the single-file archiver used for transcript pages. Both are
// optional: audio and plain transcripts need neither.
func ToolRequirements(converter, archiver string) []Requirement {
	reqs := []Requirement{{
		Name:        "Converter",
		Command:     converter,
		Description: "Required for video episodes",
		Optional:    true,
	}}
	if strings.TrimSpace(archiver) != "" {
		reqs = append(reqs, Requirement{
			Name:        "Single-file archiver",
			Command:     archiver,
			Description: "Required for archived transcripts",
			Optional:    true,
		})
	}
	return reqs
}

// MissingRequired reports whether any non-optional dependency is unavailable.
func MissingRequired(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			return true
		}
	}
	return false
}
