package editor

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var spaces = regexp.MustCompile(`[ \t\r\n\f]+`)

var inlineAtoms = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Br: true, atom.Cite: true, atom.Code: true,
	atom.Del: true, atom.Em: true, atom.I: true, atom.Kbd: true, atom.Mark: true, atom.Q: true,
	atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true, atom.Strike: true,
	atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.U: true, atom.Var: true, atom.Time: true,
}

var droppedAtoms = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true, atom.Embed: true,
	atom.Template: true, atom.Noscript: true, atom.Head: true, atom.Title: true, atom.Meta: true,
	atom.Link: true, atom.Form: true, atom.Input: true, atom.Button: true, atom.Select: true,
	atom.Textarea: true, atom.Svg: true, atom.Math: true, atom.Hr: true,
}

// parse reads HTML into a document. Anything without a place in the model is
// dropped, containers it does not know are unwrapped.
func parse(src string) document {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return document{blocks: []block{{kind: paragraph}}}
	}

	var p parser
	for _, n := range nodes {
		p.node(n)
	}
	p.flush()
	if len(p.blocks) == 0 {
		p.blocks = []block{{kind: paragraph}}
	}
	return document{blocks: p.blocks}
}

type parser struct {
	blocks  []block
	pending []span
	images  []block // met inside inline content, placed after the enclosing block
}

type inlineState struct {
	marks Mark
	href  string
}

func (p *parser) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.pending = collectNode(n, inlineState{}, p.pending, p)
		return
	case html.ElementNode:
	default:
		return
	}
	if droppedAtoms[n.DataAtom] {
		return
	}
	if inlineAtoms[n.DataAtom] {
		p.pending = collectNode(n, inlineState{}, p.pending, p)
		return
	}

	switch n.DataAtom {
	case atom.P:
		p.flush()
		p.textBlock(block{kind: paragraph}, n)
	case atom.H1, atom.H2:
		p.flush()
		p.textBlock(block{kind: heading, level: 2}, n)
	case atom.H3, atom.H4, atom.H5, atom.H6:
		p.flush()
		p.textBlock(block{kind: heading, level: 3}, n)
	case atom.Ul, atom.Ol:
		p.flush()
		p.list(n)
	case atom.Blockquote:
		p.flush()
		p.quote(n)
	case atom.Pre:
		p.flush()
		code := strings.TrimRight(textContent(n), "\n")
		p.blocks = append(p.blocks, block{kind: codeBlock, spans: stripMarks([]span{{text: code}})})
	case atom.Img:
		p.flush()
		p.image(n)
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			p.node(c)
		}
	}
}

// flush turns loose inline content into a paragraph.
func (p *parser) flush() {
	spans := tidy(p.pending)
	p.pending = nil
	if strings.TrimSpace(plain(spans)) != "" {
		p.blocks = append(p.blocks, block{kind: paragraph, spans: spans})
	}
	p.placeImages()
}

func (p *parser) placeImages() {
	p.blocks = append(p.blocks, p.images...)
	p.images = nil
}

func (p *parser) textBlock(b block, n *html.Node) {
	var spans []span
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		spans = collectNode(c, inlineState{}, spans, p)
	}
	b.spans = tidy(spans)
	if len(b.spans) > 0 || len(p.images) == 0 {
		p.blocks = append(p.blocks, b)
	}
	p.placeImages()
}

func (p *parser) image(n *html.Node) {
	if b, ok := imageBlock(n); ok {
		p.blocks = append(p.blocks, b)
	}
}

func (p *parser) list(n *html.Node) {
	b := block{kind: bulletList}
	if n.DataAtom == atom.Ol {
		b.kind = orderedList
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		var spans []span
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			spans = collectNode(cc, inlineState{}, spans, p)
		}
		b.items = append(b.items, tidy(spans))
	}
	if len(b.items) > 0 {
		p.blocks = append(p.blocks, b)
	}
	p.placeImages()
}

// quote keeps one quote block per paragraph of the quoted content.
func (p *parser) quote(n *html.Node) {
	var sub parser
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sub.node(c)
	}
	sub.flush()

	for _, b := range sub.blocks {
		switch {
		case b.kind == image:
			p.blocks = append(p.blocks, b)
		case b.isList():
			for _, item := range b.items {
				p.blocks = append(p.blocks, block{kind: blockquote, spans: item})
			}
		default:
			p.blocks = append(p.blocks, block{kind: blockquote, spans: b.spans})
		}
	}
}

// collectNode appends the inline content of n. Images met on the way become
// blocks of their own after the current one.
func collectNode(n *html.Node, st inlineState, out []span, p *parser) []span {
	switch n.Type {
	case html.TextNode:
		return append(out, span{text: spaces.ReplaceAllString(n.Data, " "), marks: st.marks, href: st.href})
	case html.ElementNode:
	default:
		return out
	}
	if droppedAtoms[n.DataAtom] {
		return out
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		st.marks |= Bold
	case atom.Em, atom.I:
		st.marks |= Italic
	case atom.S, atom.Strike, atom.Del:
		st.marks |= Strike
	case atom.Code:
		st.marks |= Code
	case atom.A:
		if href, ok := safeURL(attr(n, "href"), true); ok {
			st.href = href
		}
	case atom.Br:
		return append(out, span{text: "\n", marks: st.marks, href: st.href})
	case atom.Img:
		if b, ok := imageBlock(n); ok {
			p.images = append(p.images, b)
		}
		return out
	case atom.P, atom.Div, atom.Li, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Pre:
		if strings.TrimSpace(plain(out)) != "" {
			out = append(out, span{text: "\n"})
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = collectNode(c, st, out, p)
	}
	return out
}

// tidy collapses the whitespace HTML would collapse when rendering.
func tidy(spans []span) []span {
	spans = normalize(spans)
	for i := range spans {
		if i > 0 && (strings.HasSuffix(spans[i-1].text, " ") || strings.HasSuffix(spans[i-1].text, "\n")) {
			spans[i].text = strings.TrimLeft(spans[i].text, " ")
		}
		spans[i].text = strings.ReplaceAll(spans[i].text, " \n", "\n")
		spans[i].text = strings.ReplaceAll(spans[i].text, "\n ", "\n")
	}
	if len(spans) > 0 {
		spans[0].text = strings.TrimLeft(spans[0].text, " ")
		last := len(spans) - 1
		spans[last].text = strings.TrimRight(spans[last].text, " ")
	}
	return normalize(spans)
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Br {
			b.WriteString("\n")
			continue
		}
		b.WriteString(textContent(c))
	}
	return b.String()
}

func imageBlock(n *html.Node) (block, bool) {
	src, ok := safeURL(attr(n, "src"), false)
	if !ok {
		return block{}, false
	}
	return block{kind: image, src: src, alt: strings.TrimSpace(attr(n, "alt"))}, true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// safeURL accepts absolute http(s) URLs, site-relative paths and fragments.
// Links may also use mailto.
func safeURL(raw string, link bool) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return raw, u.Host != ""
	case "mailto":
		return raw, link
	case "":
		if strings.HasPrefix(raw, "//") {
			return "", false
		}
		return raw, strings.HasPrefix(raw, "/") || (link && strings.HasPrefix(raw, "#"))
	}
	return "", false
}
