package feed

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// MaxItems caps a parsed batch at the most recent items as provided by the
// source (no re-sorting).
const MaxItems = 30

var (
	controlCharRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F-\x{9F}]`)
	bareAmpRe     = regexp.MustCompile(`&(amp;|lt;|gt;|quot;|apos;)?`)
	cdataRe       = regexp.MustCompile(`<!\[CDATA\[|\]\]>`)
	markupRe      = regexp.MustCompile(`<[^>]+>`)
	multiSpaceRe  = regexp.MustCompile(`\s+`)
)

type Parser struct {
	gofeedParser *gofeed.Parser
	sanitizer    *Sanitizer
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		sanitizer:    NewSanitizer(),
	}
}

// Run parses raw feed text into normalized items. Partially malformed items
// are discarded silently; only structural failures abort the batch.
func (p *Parser) Run(data []byte) ([]Item, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return nil, ErrEmptyFeed
	}

	cleaned := preprocess(raw)

	parsed, err := p.gofeedParser.ParseString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("%w: feed contains no items", ErrInvalidFormat)
	}

	items := make([]Item, 0, min(len(parsed.Items), MaxItems))
	for _, raw := range parsed.Items {
		item, ok := p.normalizeItem(raw)
		if !ok {
			continue
		}

		items = append(items, item)
		if len(items) == MaxItems {
			break
		}
	}

	return items, nil
}

// preprocess tolerates feeds that violate strict XML escaping: control
// characters are stripped and bare ampersands escaped before parsing.
func preprocess(raw string) string {
	cleaned := controlCharRe.ReplaceAllString(raw, "")
	return bareAmpRe.ReplaceAllStringFunc(cleaned, func(match string) string {
		if match == "&" {
			return "&amp;"
		}
		return match
	})
}

func (p *Parser) normalizeItem(item *gofeed.Item) (Item, bool) {
	title := decodeContent(item.Title)
	description := decodeContent(cleanDescription(item.Description))
	link := strings.TrimSpace(item.Link)

	if title == "" || description == "" || link == "" {
		return Item{}, false
	}

	category := "Uncategorized"
	if len(item.Categories) > 0 && strings.TrimSpace(item.Categories[0]) != "" {
		category = decodeContent(item.Categories[0])
	}

	publishedAt := time.Now()
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	}

	return Item{
		Title:       p.sanitizer.Run(title),
		Description: p.sanitizer.Run(description),
		Link:        link,
		Category:    p.sanitizer.Run(category),
		PublishedAt: publishedAt,
	}, true
}

// decodeContent strips residual null and replacement characters left over
// from lenient decoding
func decodeContent(content string) string {
	content = strings.ReplaceAll(content, "\x00", "")
	content = strings.ReplaceAll(content, "�", "")
	return strings.TrimSpace(content)
}

// cleanDescription collapses internal markup and whitespace to a single-line
// string
func cleanDescription(description string) string {
	description = cdataRe.ReplaceAllString(description, "")
	description = markupRe.ReplaceAllString(description, "")
	description = multiSpaceRe.ReplaceAllString(description, " ")
	return strings.TrimSpace(description)
}
