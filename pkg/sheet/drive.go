package sheet

import (
	"regexp"
	"strings"
)

var drivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`drive\.google\.com/file/d/([-_\w]+)`),
	regexp.MustCompile(`drive\.google\.com/open\?id=([-_\w]+)`),
}

const driveContentPrefix = "https://lh3.googleusercontent.com/d/"

// ConvertDriveLink rewrites Google Drive share links into direct content
// URLs. Other values are returned unchanged.
func ConvertDriveLink(url string) string {
	if url == "" {
		return ""
	}
	for _, re := range drivePatterns {
		if m := re.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return driveContentPrefix + m[1] + "=w1000"
		}
	}
	return url
}

// NormalizeImagePath turns Windows separators into slashes and resolves
// Drive links.
func NormalizeImagePath(p string) string {
	return ConvertDriveLink(strings.ReplaceAll(p, `\`, "/"))
}
