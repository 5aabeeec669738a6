package utils

import (
	"regexp"
	"strings"
)

var quotedReplyHeader = regexp.MustCompile(`On .* wrote:`)

// CleanReplyContent drops the quoted thread that mail clients append after an
// "On <date>, <name> wrote:" line.
func CleanReplyContent(reply string) string {
	if loc := quotedReplyHeader.FindStringIndex(reply); loc != nil {
		reply = reply[:loc[0]]
	}
	return strings.TrimSpace(reply)
}
