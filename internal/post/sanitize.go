// AngelaMos | 2026
// sanitize.go

package post

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans editor HTML before it is stored.
type Sanitizer struct {
	content *bluemonday.Policy
	plain   *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	content := bluemonday.UGCPolicy()
	content.AllowAttrs("class").
		Matching(regexp.MustCompile(`^(language-[\w-]+|ql-[\w-]+)( (language-[\w-]+|ql-[\w-]+))*$`)).
		OnElements("pre", "code", "span", "p")
	content.AllowImages()
	content.RequireNoFollowOnLinks(true)
	content.AddTargetBlankToFullyQualifiedLinks(true)

	return &Sanitizer{
		content: content,
		plain:   bluemonday.StrictPolicy(),
	}
}

func (s *Sanitizer) Content(raw string) string {
	return strings.TrimSpace(s.content.Sanitize(raw))
}

// maxPlainPasses bounds the strip/decode loop; each pass removes at least
// one layer of entity encoding, so real input settles in two or three.
const maxPlainPasses = 8

// Plain strips all markup. StrictPolicy escapes entities, which are decoded
// again so summaries stay readable text. Decoding can surface markup that
// arrived entity-encoded, so stripping repeats until the text is stable.
func (s *Sanitizer) Plain(raw string) string {
	cur := raw
	for range maxPlainPasses {
		next := html.UnescapeString(s.plain.Sanitize(cur))
		if next == cur {
			break
		}
		cur = next
	}
	if cur != html.UnescapeString(s.plain.Sanitize(cur)) {
		return ""
	}
	return strings.TrimSpace(cur)
}

// Apply sanitizes the HTML-bearing fields of in.
func (s *Sanitizer) Apply(in *PostInput) {
	in.Content = s.Content(in.Content)
	in.Title = s.Plain(in.Title)
	if in.Summary != nil {
		sum := s.Plain(*in.Summary)
		in.Summary = &sum
	}
	for i, t := range in.Tags {
		in.Tags[i] = s.Plain(t)
	}
}
