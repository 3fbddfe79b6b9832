// Package logs reads the vistopia log file for the "logs" command: the last N
// lines, optionally narrowed by level or show and followed as new lines are
// appended.
package logs
