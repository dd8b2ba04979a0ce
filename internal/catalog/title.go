// Package catalog derives a canonical title and intro from message captions.
package catalog

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxTitleLength caps sanitized titles, counted in runes.
const MaxTitleLength = 100

var (
	// Captions from release channels follow "…【brand】Title\nintro…";
	// only the text between the closing bracket and the line break is
	// the title.
	tagPattern     = regexp.MustCompile(`【[^】]+】([^\n]+)`)
	illegalPattern = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// Extract parses a caption into a title and an intro. When the caption
// carries a bracketed brand tag, the text after the closing bracket up
// to the line break becomes the title and everything after that match
// becomes the intro. Otherwise the first line is the title and the rest
// is the intro. Empty or whitespace-only captions yield ("", "").
func Extract(caption string) (title, intro string) {
	if strings.TrimSpace(caption) == "" {
		return "", ""
	}
	if loc := tagPattern.FindStringSubmatchIndex(caption); loc != nil {
		title = Sanitize(caption[loc[2]:loc[3]])
		intro = strings.TrimSpace(caption[loc[1]:])
		return title, intro
	}
	lines := strings.SplitN(strings.TrimSpace(caption), "\n", 2)
	title = Sanitize(lines[0])
	if len(lines) > 1 {
		intro = strings.TrimSpace(lines[1])
	}
	return title, intro
}

// Sanitize makes a string safe to use as a file or directory name:
// filesystem-illegal characters are replaced with underscores, leading
// and trailing dots and spaces are trimmed, and the result is capped at
// MaxTitleLength runes.
func Sanitize(name string) string {
	name = illegalPattern.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Trim(name, ". ")
	runes := []rune(name)
	if len(runes) > MaxTitleLength {
		name = string(runes[:MaxTitleLength])
	}
	return name
}

// FallbackTitle supplies a title when caption extraction yields nothing:
// the declared file name without its extension, or a timestamp
// placeholder when no name is available either.
func FallbackTitle(declaredName string, now time.Time) string {
	name := strings.TrimSpace(declaredName)
	if name != "" {
		name = strings.TrimSuffix(name, filepath.Ext(name))
		if sanitized := Sanitize(name); sanitized != "" {
			return sanitized
		}
	}
	return "media_" + now.Format("20060102_150405")
}
