// Package editor is a structured rich-text editor. Content goes in and comes
// out as sanitized HTML; the document tree and its history stay inside.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio/media"
)

const maxHistory = 100

var (
	ErrDisabled     = errors.New("editor is read-only")
	ErrRange        = errors.New("position outside the document")
	ErrUnsupported  = errors.New("command not available for this block")
	ErrHeadingLevel = errors.New("heading level must be 2 or 3")
	ErrUnsafeURL    = errors.New("unsupported link address")
	ErrNoUploader   = errors.New("image upload is not configured")
	ErrUpload       = errors.New("image upload failed")
)

// Uploader stores an image and returns the URL to embed.
type Uploader interface {
	Upload(ctx context.Context, f media.File) (string, error)
}

// UploadFunc adapts a function to Uploader.
type UploadFunc func(ctx context.Context, f media.File) (string, error)

func (fn UploadFunc) Upload(ctx context.Context, f media.File) (string, error) {
	return fn(ctx, f)
}

// Range addresses text inside one block, or one list item of a list block.
// From and To count characters.
type Range struct {
	Block int
	Item  int
	From  int
	To    int
}

// At is an empty range, a caret position.
func At(block, item, offset int) Range {
	return Range{Block: block, Item: item, From: offset, To: offset}
}

type Option func(*Editor)

func WithUploader(u Uploader) Option {
	return func(e *Editor) { e.uploader = u }
}

// OnChange registers fn to receive the HTML after every change.
func OnChange(fn func(html string)) Option {
	return func(e *Editor) { e.onChange = fn }
}

func Disabled(disabled bool) Option {
	return func(e *Editor) { e.disabled = disabled }
}

type Editor struct {
	doc      document
	undo     []document
	redo     []document
	disabled bool
	uploader Uploader
	onChange func(string)
}

func New(initialHTML string, opts ...Option) *Editor {
	e := &Editor{doc: parse(initialHTML)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) HTML() string {
	return sanitizer.Sanitize(e.doc.render())
}

func (e *Editor) IsBlank() bool {
	return e.doc.blank()
}

// Blocks reports how many top-level blocks the document has.
func (e *Editor) Blocks() int {
	return len(e.doc.blocks)
}

func (e *Editor) Disabled() bool {
	return e.disabled
}

func (e *Editor) SetDisabled(disabled bool) {
	e.disabled = disabled
}

// SetContent replaces the whole document. The replacement can be undone.
func (e *Editor) SetContent(src string) error {
	return e.apply(func(d *document) error {
		*d = parse(src)
		return nil
	})
}

// LoadMarkdown replaces the document with converted Markdown.
func (e *Editor) LoadMarkdown(md string) error {
	return e.SetContent(FromMarkdown(md))
}

func (e *Editor) CanUndo() bool { return !e.disabled && len(e.undo) > 0 }

func (e *Editor) CanRedo() bool { return !e.disabled && len(e.redo) > 0 }

func (e *Editor) Undo() bool {
	if !e.CanUndo() {
		return false
	}
	e.redo = append(e.redo, e.doc)
	e.doc = e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	e.changed()
	return true
}

func (e *Editor) Redo() bool {
	if !e.CanRedo() {
		return false
	}
	e.undo = append(e.undo, e.doc)
	e.doc = e.redo[len(e.redo)-1]
	e.redo = e.redo[:len(e.redo)-1]
	e.changed()
	return true
}

// apply runs fn on a copy of the document and commits the copy as one
// history step. A failing or no-op fn leaves everything untouched.
func (e *Editor) apply(fn func(d *document) error) error {
	if e.disabled {
		return ErrDisabled
	}
	next := e.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if next.render() == e.doc.render() {
		return nil
	}

	e.undo = append(e.undo, e.doc)
	if len(e.undo) > maxHistory {
		e.undo = e.undo[len(e.undo)-maxHistory:]
	}
	e.redo = nil
	e.doc = next
	e.changed()
	return nil
}

func (e *Editor) changed() {
	if e.onChange != nil {
		e.onChange(e.HTML())
	}
}

func (e *Editor) ToggleBold(r Range) error   { return e.ToggleMark(r, Bold) }
func (e *Editor) ToggleItalic(r Range) error { return e.ToggleMark(r, Italic) }
func (e *Editor) ToggleStrike(r Range) error { return e.ToggleMark(r, Strike) }
func (e *Editor) ToggleCode(r Range) error   { return e.ToggleMark(r, Code) }

// ToggleMark removes m when the whole range already carries it and adds it
// otherwise.
func (e *Editor) ToggleMark(r Range, m Mark) error {
	return e.apply(func(d *document) error {
		spans, blk, err := d.textRange(r)
		if err != nil {
			return err
		}
		if blk.kind == codeBlock {
			return ErrUnsupported
		}
		s, i, j := cut(*spans, r.From, r.To)
		all := i < j
		for k := i; k < j; k++ {
			all = all && s[k].marks&m != 0
		}
		for k := i; k < j; k++ {
			if all {
				s[k].marks &^= m
			} else {
				s[k].marks |= m
			}
		}
		*spans = normalize(s)
		return nil
	})
}

// ToggleHeading turns a text block into a heading of the given level, or back
// into a paragraph when it already is one.
func (e *Editor) ToggleHeading(blockIdx, level int) error {
	if level != 2 && level != 3 {
		return ErrHeadingLevel
	}
	return e.apply(func(d *document) error {
		b, err := d.textBlock(blockIdx)
		if err != nil {
			return err
		}
		if b.kind == heading && b.level == level {
			b.kind, b.level = paragraph, 0
			return nil
		}
		b.kind, b.level = heading, level
		return nil
	})
}

func (e *Editor) ToggleBlockquote(blockIdx int) error {
	return e.apply(func(d *document) error {
		b, err := d.textBlock(blockIdx)
		if err != nil {
			return err
		}
		if b.kind == blockquote {
			b.kind = paragraph
		} else {
			b.kind, b.level = blockquote, 0
		}
		return nil
	})
}

// ToggleCodeBlock drops inline formatting, as code blocks hold plain text.
func (e *Editor) ToggleCodeBlock(blockIdx int) error {
	return e.apply(func(d *document) error {
		b, err := d.textBlock(blockIdx)
		if err != nil {
			return err
		}
		if b.kind == codeBlock {
			b.kind = paragraph
			return nil
		}
		b.kind, b.level = codeBlock, 0
		b.spans = stripMarks(b.spans)
		return nil
	})
}

func (e *Editor) ToggleBulletList(blockIdx int) error {
	return e.toggleList(blockIdx, bulletList)
}

func (e *Editor) ToggleOrderedList(blockIdx int) error {
	return e.toggleList(blockIdx, orderedList)
}

// toggleList wraps a text block into a one-item list, switches a list to the
// other kind, or lifts every item of a list of the same kind into paragraphs.
func (e *Editor) toggleList(blockIdx int, k kind) error {
	return e.apply(func(d *document) error {
		if blockIdx < 0 || blockIdx >= len(d.blocks) {
			return ErrRange
		}
		b := d.blocks[blockIdx]
		switch {
		case b.kind == k:
			lifted := make([]block, 0, len(b.items))
			for _, item := range b.items {
				lifted = append(lifted, block{kind: paragraph, spans: item})
			}
			d.blocks = splice(d.blocks, blockIdx, 1, lifted...)
		case b.isList():
			d.blocks[blockIdx].kind = k
		case b.kind == image:
			return ErrUnsupported
		default:
			d.blocks[blockIdx] = block{kind: k, items: [][]span{b.spans}}
		}
		return nil
	})
}

// SetLink points the range at href. An empty href removes the link instead.
func (e *Editor) SetLink(r Range, href string) error {
	href = strings.TrimSpace(href)
	if href == "" {
		return e.UnsetLink(r)
	}
	if !strings.Contains(href, ":") && !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#") {
		href = "https://" + href
	}
	href, ok := safeURL(href, true)
	if !ok {
		return ErrUnsafeURL
	}
	return e.apply(func(d *document) error {
		spans, blk, err := d.textRange(r)
		if err != nil {
			return err
		}
		if blk.kind == codeBlock || r.From == r.To {
			return ErrUnsupported
		}
		s, i, j := cut(*spans, r.From, r.To)
		for k := i; k < j; k++ {
			s[k].href = href
		}
		*spans = normalize(s)
		return nil
	})
}

// UnsetLink removes the link under the range, extended to the whole link
// when the range only touches part of it.
func (e *Editor) UnsetLink(r Range) error {
	return e.apply(func(d *document) error {
		spans, _, err := d.textRange(r)
		if err != nil {
			return err
		}
		from, to := linkExtent(*spans, r.From, r.To)
		s, i, j := cut(*spans, from, to)
		for k := i; k < j; k++ {
			s[k].href = ""
		}
		*spans = normalize(s)
		return nil
	})
}

// PromptLink applies the answer of a link prompt: a cancelled prompt changes
// nothing, an empty answer removes the link, anything else sets it.
func (e *Editor) PromptLink(r Range, answer string, ok bool) error {
	if !ok {
		return nil
	}
	return e.SetLink(r, answer)
}

// InsertText types text at the caret, continuing the formatting before it.
func (e *Editor) InsertText(at Range, text string) error {
	return e.apply(func(d *document) error {
		spans, blk, err := d.textRange(at)
		if err != nil {
			return err
		}
		s, i, j := cut(*spans, at.From, at.To)
		ins := span{text: text}
		switch {
		case blk.kind == codeBlock:
		case i > 0:
			ins.marks, ins.href = s[i-1].marks, s[i-1].href
		case i < len(s):
			ins.marks, ins.href = s[i].marks, s[i].href
		}
		*spans = normalize(splice(s, i, j-i, ins))
		return nil
	})
}

func (e *Editor) DeleteRange(r Range) error {
	return e.apply(func(d *document) error {
		spans, _, err := d.textRange(r)
		if err != nil {
			return err
		}
		s, i, j := cut(*spans, r.From, r.To)
		*spans = normalize(splice(s, i, j-i))
		return nil
	})
}

// SplitBlock breaks the block, or list item, at the caret. The part after it
// becomes a paragraph when splitting a heading.
func (e *Editor) SplitBlock(at Range) error {
	return e.apply(func(d *document) error {
		spans, blk, err := d.textRange(at)
		if err != nil {
			return err
		}
		s, i, _ := cut(*spans, at.From, at.From)
		head := normalize(append([]span(nil), s[:i]...))
		tail := normalize(append([]span(nil), s[i:]...))

		if blk.isList() {
			b := &d.blocks[at.Block]
			b.items[at.Item] = head
			b.items = splice(b.items, at.Item+1, 0, tail)
			return nil
		}
		next := block{kind: blk.kind, level: blk.level, spans: tail}
		if blk.kind == heading {
			next = block{kind: paragraph, spans: tail}
		}
		d.blocks[at.Block].spans = head
		d.blocks = splice(d.blocks, at.Block+1, 0, next)
		return nil
	})
}

// InsertParagraph adds a paragraph before the block at index at; an index
// equal to the block count appends.
func (e *Editor) InsertParagraph(at int, text string) error {
	return e.apply(func(d *document) error {
		if at < 0 || at > len(d.blocks) {
			return ErrRange
		}
		d.blocks = splice(d.blocks, at, 0, block{kind: paragraph, spans: normalize([]span{{text: text}})})
		return nil
	})
}

// RemoveBlock deletes a whole block, images included.
func (e *Editor) RemoveBlock(at int) error {
	return e.apply(func(d *document) error {
		if at < 0 || at >= len(d.blocks) {
			return ErrRange
		}
		d.blocks = splice(d.blocks, at, 1)
		return nil
	})
}

// InsertImage uploads f and inserts the image before the block at index at.
// Nothing is inserted when the upload fails.
func (e *Editor) InsertImage(ctx context.Context, at int, f media.File) error {
	if e.disabled {
		return ErrDisabled
	}
	if e.uploader == nil {
		return ErrNoUploader
	}
	if at < 0 || at > len(e.doc.blocks) {
		return ErrRange
	}

	url, err := e.uploader.Upload(ctx, f)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	src, ok := safeURL(url, false)
	if !ok {
		return fmt.Errorf("%w: unusable url %q", ErrUpload, url)
	}

	alt := strings.TrimSuffix(f.Name, pathExt(f.Name))
	return e.apply(func(d *document) error {
		if at > len(d.blocks) {
			at = len(d.blocks)
		}
		d.blocks = splice(d.blocks, at, 0, block{kind: image, src: src, alt: alt})
		return nil
	})
}

// textRange resolves r and checks its offsets.
func (d *document) textRange(r Range) (*[]span, *block, error) {
	spans, b, err := d.container(r.Block, r.Item)
	if err != nil {
		return nil, nil, err
	}
	if r.From < 0 || r.From > r.To || r.To > textLen(*spans) {
		return nil, nil, ErrRange
	}
	return spans, b, nil
}

// textBlock returns a block that is not a list or an image.
func (d *document) textBlock(i int) (*block, error) {
	if i < 0 || i >= len(d.blocks) {
		return nil, ErrRange
	}
	b := &d.blocks[i]
	if b.isList() || b.kind == image {
		return nil, ErrUnsupported
	}
	return b, nil
}

// linkExtent grows [from, to) over the links it touches.
func linkExtent(spans []span, from, to int) (int, int) {
	pos := 0
	for i, s := range spans {
		end := pos + s.len()
		touches := (pos < to && end > from) || (from == to && pos <= from && from <= end)
		if s.href != "" && touches {
			start := pos
			for k := i - 1; k >= 0 && spans[k].href == s.href; k-- {
				start -= spans[k].len()
			}
			stop := end
			for k := i + 1; k < len(spans) && spans[k].href == s.href; k++ {
				stop += spans[k].len()
			}
			from, to = min(from, start), max(to, stop)
		}
		pos = end
	}
	return from, to
}

func splice[T any](s []T, at, del int, ins ...T) []T {
	out := make([]T, 0, len(s)-del+len(ins))
	out = append(out, s[:at]...)
	out = append(out, ins...)
	return append(out, s[at+del:]...)
}

func pathExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}
