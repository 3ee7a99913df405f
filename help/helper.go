// Package help has small filesystem helpers shared by config and sources.
package help

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// HomeDir is the user's home directory, or "." when none can be found.
func HomeDir() string {
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return h
	}
	if u, err := user.Current(); err == nil && u.HomeDir != "" {
		return u.HomeDir
	}
	return "."
}

// ExpandHome replaces a leading "~" path element with the home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~"+string(os.PathSeparator)) {
		return filepath.Join(HomeDir(), p[2:])
	}
	return p
}
