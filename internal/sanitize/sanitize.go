package sanitize

import (
	"regexp"
	"strings"
)

// FilterMarker is substituted for filtered adversarial content.
const FilterMarker = "[FILTERED]"

const maxMessageLength = 500

// Prompt injection phrasings replaced with FilterMarker. The "above"
// pattern matches only the "ignore [the] above [and] instructions/prompts"
// combination: a bare "ignore above and do this" passes through, trading
// recall for a lower false positive rate.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)ignore\s+(?:the\s+)?above\s+(?:and\s+)?(?:instructions|prompts)`),
	regexp.MustCompile(`(?i)disregard\s+(?:all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)forget\s+(?:all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)system\s+prompt`),
	regexp.MustCompile(`(?i)system\s+instructions?`),
	regexp.MustCompile(`(?i)you\s+are\s+now`),
	regexp.MustCompile(`(?i)\bact\s+as\b`),
	regexp.MustCompile(`(?i)pretend\s+to\s+be`),
	regexp.MustCompile(`(?i)roleplay\s+as`),
}

// Model control tokens are matched literally.
var controlTokens = strings.NewReplacer(
	"<|endoftext|>", FilterMarker,
	"<|im_start|>", FilterMarker,
	"<|im_end|>", FilterMarker,
	"[INST]", FilterMarker,
	"[/INST]", FilterMarker,
	"<<SYS>>", FilterMarker,
	"<</SYS>>", FilterMarker,
)

// Bidirectional override and isolate control characters, strippable because
// they can visually disguise malicious text.
var bidiOverrides = regexp.MustCompile("[‪-‮⁦-⁩]")

// Message filters prompt injection phrasings and model control tokens out
// of commit text, strips bidirectional override characters and
// hard-truncates the result to 500 characters with trailing whitespace
// trimmed after the cut. It never fails and never returns raw dangerous
// text. Bidi characters are stripped first so they cannot split a phrase
// to evade the pattern match.
func Message(text string) string {
	if text == "" {
		return ""
	}
	text = bidiOverrides.ReplaceAllString(text, "")
	for _, pattern := range injectionPatterns {
		text = pattern.ReplaceAllString(text, FilterMarker)
	}
	text = controlTokens.Replace(text)
	return truncate(text, maxMessageLength)
}

var (
	urlUserPass  = regexp.MustCompile(`^(https?://)[^/@:]+:[^/@]+@`)
	urlBareToken = regexp.MustCompile(`^(https?://)[^/@:]+@`)
	sshUser      = regexp.MustCompile(`^(ssh://)[^/@]+@`)
)

// RemoteURL redacts credentials embedded in a remote URL: user:password
// becomes ***:***, a bare token becomes a single ***. The SCP-style
// user@host:path form is returned untouched, its '@' is structural.
func RemoteURL(url string) string {
	if url == "" {
		return ""
	}
	switch {
	case urlUserPass.MatchString(url):
		return urlUserPass.ReplaceAllString(url, "${1}***:***@")
	case urlBareToken.MatchString(url):
		return urlBareToken.ReplaceAllString(url, "${1}***@")
	case sshUser.MatchString(url):
		return sshUser.ReplaceAllString(url, "${1}***@")
	}
	return url
}

var (
	macHomePrefix = regexp.MustCompile(`^/Users/[^/]+`)
	linuxHome     = regexp.MustCompile(`^/home/[^/]+`)
	windowsHome   = regexp.MustCompile(`^[A-Za-z]:\\Users\\[^\\]+`)
	tmpSession    = regexp.MustCompile(`^(/tmp/)[^/]+/`)
	varTmpSession = regexp.MustCompile(`^(/var/tmp/)[^/]+/`)
)

// FilePath redacts user and session specific path prefixes: home
// directories become "~" and temp session segments become "***", keeping
// the remainder and its separator style. Relative paths and other absolute
// paths pass through unchanged.
func FilePath(path string) string {
	if path == "" {
		return ""
	}
	switch {
	case macHomePrefix.MatchString(path):
		return macHomePrefix.ReplaceAllString(path, "~")
	case linuxHome.MatchString(path):
		return linuxHome.ReplaceAllString(path, "~")
	case windowsHome.MatchString(path):
		return windowsHome.ReplaceAllString(path, "~")
	case varTmpSession.MatchString(path):
		return varTmpSession.ReplaceAllString(path, "${1}***/")
	case tmpSession.MatchString(path):
		return tmpSession.ReplaceAllString(path, "${1}***/")
	}
	return path
}

var (
	anyUserPass  = regexp.MustCompile(`(https?://)[^\s/@:]+:[^\s/@]+@`)
	anyBareToken = regexp.MustCompile(`(https?://)[^\s/@:]+@`)
	anyMacHome   = regexp.MustCompile(`/Users/[^/\s]+`)
	anyLinuxHome = regexp.MustCompile(`/home/[^/\s]+`)
	anyWinHome   = regexp.MustCompile(`[A-Za-z]:\\Users\\[^\\\s]+`)
	anyTmpDir    = regexp.MustCompile(`(/tmp/|/var/tmp/)[^/\s]+/`)
)

// ErrorText redacts filesystem layout and credentials from arbitrary
// subprocess error output. Applied to every command error before it is
// surfaced, so failures never leak what the parsers would have hidden.
func ErrorText(text string) string {
	if text == "" {
		return ""
	}
	text = anyUserPass.ReplaceAllString(text, "${1}***:***@")
	text = anyBareToken.ReplaceAllString(text, "${1}***@")
	text = anyWinHome.ReplaceAllString(text, "~")
	text = anyMacHome.ReplaceAllString(text, "~")
	text = anyLinuxHome.ReplaceAllString(text, "~")
	text = anyTmpDir.ReplaceAllString(text, "${1}***/")
	return text
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRight(string(runes[:limit]), " \t\n\r")
}
