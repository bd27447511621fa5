package feed

import (
	"regexp"
	"strings"
)

var allowedTags = map[string]bool{
	"p":      true,
	"br":     true,
	"b":      true,
	"i":      true,
	"em":     true,
	"strong": true,
}

var (
	scriptRe     = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	styleRe      = regexp.MustCompile(`(?is)<style\b.*?</style\s*>`)
	commentRe    = regexp.MustCompile(`(?s)<!--.*?-->`)
	unsafeAttrRe = regexp.MustCompile(`(?i)\s*(on\w+|style|class|id)="[^"]*"`)
	tagRe        = regexp.MustCompile(`</?([^>]+)>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
)

// Sanitizer strips unsafe markup from free-text fields, keeping only a small
// allow-list of formatting tags.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Run is total and idempotent. The cleaning pass is applied to a fixed point
// so markup revealed by entity decoding cannot survive the result, however
// deeply it was encoded. Every replacement in pass shrinks the string, so
// the loop terminates.
func (s *Sanitizer) Run(text string) string {
	if text == "" {
		return ""
	}

	out := strings.TrimSpace(text)
	for {
		next := s.pass(out)
		if next == out {
			return next
		}
		out = next
	}
}

func (s *Sanitizer) pass(text string) string {
	text = scriptRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	text = commentRe.ReplaceAllString(text, "")
	text = unsafeAttrRe.ReplaceAllString(text, "")

	text = tagRe.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.ToLower(strings.TrimSpace(tagRe.FindStringSubmatch(match)[1]))
		name = strings.TrimSuffix(name, "/")
		name = strings.TrimSpace(name)
		if allowedTags[name] {
			return match
		}
		return ""
	})

	text = entityReplacer.Replace(text)
	text = whitespaceRe.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
