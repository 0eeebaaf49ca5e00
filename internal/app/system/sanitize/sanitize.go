// internal/app/system/sanitize/sanitize.go

// Package sanitize strips markup from user-provided text before it is
// stored. Workspace, project, task, and role names come from API clients
// and may be echoed back to browsers, so everything goes through a strict
// policy that allows no HTML at all.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// TextPtr sanitizes the pointed-to string in place. Nil is a no-op.
func TextPtr(p *string) {
	if p == nil {
		return
	}
	*p = Text(*p)
}
