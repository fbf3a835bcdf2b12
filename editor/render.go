package editor

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var sanitizer = newSanitizer()

// newSanitizer allows exactly the markup the editor produces.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "h2", "h3", "ul", "ol", "li", "blockquote", "pre", "code", "strong", "em", "s")
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

func (d document) render() string {
	if len(d.blocks) == 0 {
		return "<p></p>"
	}

	var b strings.Builder
	for _, blk := range d.blocks {
		switch blk.kind {
		case paragraph:
			wrap(&b, "p", blk.spans)
		case heading:
			wrap(&b, "h"+strconv.Itoa(blk.level), blk.spans)
		case blockquote:
			b.WriteString("<blockquote>")
			wrap(&b, "p", blk.spans)
			b.WriteString("</blockquote>")
		case codeBlock:
			b.WriteString("<pre><code>")
			b.WriteString(html.EscapeString(plain(blk.spans)))
			b.WriteString("</code></pre>")
		case bulletList, orderedList:
			tag := "ul"
			if blk.kind == orderedList {
				tag = "ol"
			}
			b.WriteString("<" + tag + ">")
			for _, item := range blk.items {
				b.WriteString("<li>")
				wrap(&b, "p", item)
				b.WriteString("</li>")
			}
			b.WriteString("</" + tag + ">")
		case image:
			b.WriteString(`<img src="` + html.EscapeString(blk.src) + `"`)
			if blk.alt != "" {
				b.WriteString(` alt="` + html.EscapeString(blk.alt) + `"`)
			}
			b.WriteString(">")
		}
	}
	return b.String()
}

func wrap(b *strings.Builder, tag string, spans []span) {
	b.WriteString("<" + tag + ">")
	for _, s := range spans {
		writeSpan(b, s)
	}
	b.WriteString("</" + tag + ">")
}

func writeSpan(b *strings.Builder, s span) {
	var closers []string
	open := func(tag, attrs string) {
		b.WriteString("<" + tag + attrs + ">")
		closers = append(closers, "</"+tag+">")
	}
	if s.href != "" {
		open("a", ` href="`+html.EscapeString(s.href)+`"`)
	}
	if s.marks&Bold != 0 {
		open("strong", "")
	}
	if s.marks&Italic != 0 {
		open("em", "")
	}
	if s.marks&Strike != 0 {
		open("s", "")
	}
	if s.marks&Code != 0 {
		open("code", "")
	}

	for i, line := range strings.Split(s.text, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}

	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteString(closers[i])
	}
}

// Sanitize rewrites arbitrary HTML into the subset the editor can represent.
func Sanitize(src string) string {
	return sanitizer.Sanitize(parse(src).render())
}

// IsBlank reports whether the content has neither text nor images.
func IsBlank(src string) bool {
	return parse(src).blank()
}

// PlainText returns the text of the content on one line, cut at a word
// boundary when longer than max runes.
func PlainText(src string, max int) string {
	d := parse(src)
	var parts []string
	for _, b := range d.blocks {
		if b.kind == codeBlock || b.kind == image {
			continue
		}
		parts = append(parts, plain(b.spans))
		for _, item := range b.items {
			parts = append(parts, plain(item))
		}
	}
	text := strings.TrimSpace(spaces.ReplaceAllString(strings.Join(parts, " "), " "))
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	r := []rune(text)[:max]
	if i := strings.LastIndex(string(r), " "); i > 0 {
		return strings.TrimRight(string(r)[:i], " ,.;:") + "…"
	}
	return string(r) + "…"
}

// FromMarkdown converts Markdown into editor HTML.
func FromMarkdown(md string) string {
	extensions := mdparser.CommonExtensions | mdparser.AutoHeadingIDs | mdparser.NoEmptyLineBeforeBlock
	p := mdparser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	opts := mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank}
	out := markdown.Render(doc, mdhtml.NewRenderer(opts))
	return Sanitize(string(out))
}
