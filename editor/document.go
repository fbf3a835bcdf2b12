package editor

import (
	"strings"
	"unicode/utf8"
)

// Mark is a set of inline formats.
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Strike
	Code
)

type kind int

const (
	paragraph kind = iota
	heading
	bulletList
	orderedList
	blockquote
	codeBlock
	image
)

type span struct {
	text  string
	marks Mark
	href  string
}

func (s span) len() int { return utf8.RuneCountInString(s.text) }

type block struct {
	kind  kind
	level int      // heading level, 2 or 3
	spans []span   // text of paragraphs, headings, quotes and code blocks
	items [][]span // list items
	src   string   // image
	alt   string
}

type document struct {
	blocks []block
}

func (d document) clone() document {
	out := document{blocks: make([]block, len(d.blocks))}
	for i, b := range d.blocks {
		c := b
		c.spans = append([]span(nil), b.spans...)
		if b.items != nil {
			c.items = make([][]span, len(b.items))
			for j, item := range b.items {
				c.items[j] = append([]span(nil), item...)
			}
		}
		out.blocks[i] = c
	}
	return out
}

func (b block) isList() bool { return b.kind == bulletList || b.kind == orderedList }

// container returns the spans addressed by block and item.
func (d *document) container(blockIdx, item int) (*[]span, *block, error) {
	if blockIdx < 0 || blockIdx >= len(d.blocks) {
		return nil, nil, ErrRange
	}
	b := &d.blocks[blockIdx]
	switch {
	case b.kind == image:
		return nil, nil, ErrUnsupported
	case b.isList():
		if item < 0 || item >= len(b.items) {
			return nil, nil, ErrRange
		}
		return &b.items[item], b, nil
	default:
		if item != 0 {
			return nil, nil, ErrRange
		}
		return &b.spans, b, nil
	}
}

func textLen(spans []span) int {
	n := 0
	for _, s := range spans {
		n += s.len()
	}
	return n
}

func plain(spans []span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.text)
	}
	return b.String()
}

// splitAt makes off a span boundary and returns the index of the first span
// starting at or after it.
func splitAt(spans []span, off int) ([]span, int) {
	pos := 0
	for i, s := range spans {
		if off == pos {
			return spans, i
		}
		n := s.len()
		if off < pos+n {
			r := []rune(s.text)
			left, right := s, s
			left.text = string(r[:off-pos])
			right.text = string(r[off-pos:])
			out := make([]span, 0, len(spans)+1)
			out = append(out, spans[:i]...)
			out = append(out, left, right)
			out = append(out, spans[i+1:]...)
			return out, i + 1
		}
		pos += n
	}
	return spans, len(spans)
}

// cut returns spans with [from, to) isolated as spans[i:j].
func cut(spans []span, from, to int) ([]span, int, int) {
	spans, i := splitAt(spans, from)
	spans, j := splitAt(spans, to)
	return spans, i, j
}

// normalize merges neighbours with identical formatting and drops empty spans.
func normalize(spans []span) []span {
	out := spans[:0:0]
	for _, s := range spans {
		if s.text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].marks == s.marks && out[n-1].href == s.href {
			out[n-1].text += s.text
			continue
		}
		out = append(out, s)
	}
	return out
}

// stripMarks keeps the text only, as code blocks carry no formatting.
func stripMarks(spans []span) []span {
	t := plain(spans)
	if t == "" {
		return nil
	}
	return []span{{text: t}}
}

func (d document) blank() bool {
	for _, b := range d.blocks {
		if b.kind == image {
			return false
		}
		if strings.TrimSpace(plain(b.spans)) != "" {
			return false
		}
		for _, item := range b.items {
			if strings.TrimSpace(plain(item)) != "" {
				return false
			}
		}
	}
	return true
}
