package core

import (
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var urlSchemeRegex = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// FixURL normalizes a submitted external URL before storage: whitespace is
// trimmed, backslashes become forward slashes, spaces are escaped and URLs
// that are neither server-relative nor carrying a scheme get "http://"
// prepended. An empty (or all-whitespace) input stays empty.
func FixURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	u = strings.ReplaceAll(u, "\\", "/")
	u = strings.ReplaceAll(u, " ", "%20")
	if strings.HasPrefix(u, "/") { // server-relative, keep as is
		return u
	}
	if !urlSchemeRegex.MatchString(u) {
		u = "http://" + u
	}
	return u
}

// Getwd finds the project root: the nearest parent directory holding go.mod.
// go-test changes the working directory to the test package being run, which
// breaks relative asset paths.
// see: https://stackoverflow.com/questions/23847003/golang-tests-and-working-directory
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		parent := filepath.Dir(currDir)
		if parent == currDir {
			return wd
		}
		currDir = parent
	}
}
