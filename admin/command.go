package admin

import (
	"errors"

	"folio/editor"
)

var ErrUnknownCommand = errors.New("unknown editor command")

// Command is one toolbar action. Range addresses the text it applies to;
// block level commands only read Range.Block.
type Command struct {
	Name  string
	Range editor.Range
	Href  string
	Text  string
	TagID string
}

// Apply runs c against the page. A failed command changes nothing and is
// kept in CommandErr until the next command or a dismissal.
func (p *EditorPage) Apply(c Command) error {
	if p.state != Editing {
		return ErrNotEditing
	}
	e, r := p.Editor, c.Range

	var err error
	switch c.Name {
	case "bold":
		err = e.ToggleBold(r)
	case "italic":
		err = e.ToggleItalic(r)
	case "strike":
		err = e.ToggleStrike(r)
	case "code":
		err = e.ToggleCode(r)
	case "h2":
		err = e.ToggleHeading(r.Block, 2)
	case "h3":
		err = e.ToggleHeading(r.Block, 3)
	case "quote":
		err = e.ToggleBlockquote(r.Block)
	case "codeblock":
		err = e.ToggleCodeBlock(r.Block)
	case "bullets":
		err = e.ToggleBulletList(r.Block)
	case "numbers":
		err = e.ToggleOrderedList(r.Block)
	case "link":
		// an empty address removes the link
		err = e.PromptLink(r, c.Href, true)
	case "unlink":
		err = e.UnsetLink(r)
	case "type":
		err = e.InsertText(r, c.Text)
	case "delete":
		err = e.DeleteRange(r)
	case "split":
		err = e.SplitBlock(r)
	case "paragraph":
		err = e.InsertParagraph(r.Block, c.Text)
	case "remove":
		err = e.RemoveBlock(r.Block)
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "tag":
		p.Form.ToggleTag(c.TagID)
	case "clear-image":
		p.Form.ClearFeaturedImage()
	case "dismiss":
		p.DismissError()
	default:
		err = ErrUnknownCommand
	}
	p.CommandErr = err
	return err
}
