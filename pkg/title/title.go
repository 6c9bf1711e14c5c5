// Package title derives content-service page titles from report file paths.
package title

import (
	"fmt"
	"strings"
)

// Sentinel is the suffix the map generator appends to a project name.
// It is removed before any other transformation.
const Sentinel = "-map.insert"

// Template composes a page title from a project name and a cleaned file name.
const Template = "%s - Surfboard Report - %s"

// Derive returns the page title for filename within project.
//
// The first occurrence of Sentinel is removed, every remaining dash becomes
// a space, and a leading "./" is stripped. The order matters: dashes inside
// the sentinel never reach the dash replacement.
func Derive(project, filename string) string {
	return fmt.Sprintf(Template, project, Clean(filename))
}

// Clean returns the file-name part of a derived title.
func Clean(filename string) string {
	name := strings.Replace(filename, Sentinel, "", 1)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimPrefix(name, "./")
}
