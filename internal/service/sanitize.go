package service

import "regexp"

// mentionPattern matches @handles at a word start. Email addresses do not
// match because the @ follows a non-space character.
var mentionPattern = regexp.MustCompile(`(^|[\s(\[])@([A-Za-z0-9][A-Za-z0-9-]*(?:/[A-Za-z0-9][A-Za-z0-9._-]*)?)`)

// SanitizeMentions wraps @handles from chat text in code spans so the filed
// issue does not notify tracker users or teams. Returns the cleaned content
// and the number of mentions neutralised.
func SanitizeMentions(content string) (string, int) {
	matches := mentionPattern.FindAllStringIndex(content, -1)
	count := len(matches)
	if count == 0 {
		return content, 0
	}
	return mentionPattern.ReplaceAllString(content, "$1`@$2`"), count
}
