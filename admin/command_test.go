package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/editor"
)

func openNew(t *testing.T, content string) *EditorPage {
	t.Helper()
	page, err := OpenEditor(context.Background(), newBackend(), adminSession, NewPostID)
	require.NoError(t, err)
	require.NoError(t, page.Fill(Submission{Title: "Draft", Content: content}))
	return page
}

func TestApplyFormattingKeepsFormInSync(t *testing.T) {
	page := openNew(t, "<p>hello world</p>")
	hello := editor.Range{Block: 0, From: 0, To: 5}

	require.NoError(t, page.Apply(Command{Name: "bold", Range: hello}))
	assert.Equal(t, "<p><strong>hello</strong> world</p>", page.Form.Content)

	require.NoError(t, page.Apply(Command{Name: "link", Range: editor.Range{From: 6, To: 11}, Href: "https://example.com"}))
	assert.Equal(t, `<p><strong>hello</strong> <a href="https://example.com">world</a></p>`, page.Form.Content)

	require.NoError(t, page.Apply(Command{Name: "h2"}))
	assert.Equal(t, `<h2><strong>hello</strong> <a href="https://example.com">world</a></h2>`, page.Form.Content)

	require.NoError(t, page.Apply(Command{Name: "undo"}))
	require.NoError(t, page.Apply(Command{Name: "undo"}))
	assert.Equal(t, "<p><strong>hello</strong> world</p>", page.Form.Content)
	require.NoError(t, page.Apply(Command{Name: "redo"}))
	assert.Contains(t, page.Form.Content, `<a href="https://example.com">world</a>`)
}

func TestApplyBlockCommands(t *testing.T) {
	page := openNew(t, "<p>one</p>")

	require.NoError(t, page.Apply(Command{Name: "paragraph", Range: editor.Range{Block: 1}, Text: "two"}))
	assert.Equal(t, "<p>one</p><p>two</p>", page.Form.Content)
	require.NoError(t, page.Apply(Command{Name: "bullets", Range: editor.Range{Block: 1}}))
	assert.Equal(t, "<p>one</p><ul><li><p>two</p></li></ul>", page.Form.Content)
	require.NoError(t, page.Apply(Command{Name: "remove", Range: editor.Range{Block: 0}}))
	assert.Equal(t, "<ul><li><p>two</p></li></ul>", page.Form.Content)
}

func TestApplyRejectsBadInput(t *testing.T) {
	page := openNew(t, "<p>short</p>")
	before := page.Form.Content

	err := page.Apply(Command{Name: "bold", Range: editor.Range{Block: 4, To: 2}})
	assert.ErrorIs(t, err, editor.ErrRange)
	assert.ErrorIs(t, page.CommandErr, editor.ErrRange)
	assert.Equal(t, before, page.Form.Content)

	err = page.Apply(Command{Name: "link", Range: editor.Range{To: 5}, Href: "javascript:alert(1)"})
	assert.ErrorIs(t, err, editor.ErrUnsafeURL)
	assert.Equal(t, before, page.Form.Content)

	assert.ErrorIs(t, page.Apply(Command{Name: "explode"}), ErrUnknownCommand)

	require.NoError(t, page.Apply(Command{Name: "dismiss"}))
	assert.Nil(t, page.CommandErr)
}

func TestApplyFormCommands(t *testing.T) {
	page := openNew(t, "<p>x</p>")
	page.Form.SetFeaturedImage("/uploads/cover.png")

	require.NoError(t, page.Apply(Command{Name: "tag", TagID: "a"}))
	assert.True(t, page.Form.HasTag("a"))
	require.NoError(t, page.Apply(Command{Name: "tag", TagID: "a"}))
	assert.False(t, page.Form.HasTag("a"))

	require.NoError(t, page.Apply(Command{Name: "clear-image"}))
	assert.Empty(t, page.Form.FeaturedImage)
}

func TestApplyNeedsEditing(t *testing.T) {
	page := openNew(t, "<p>x</p>")
	page.state = Saving
	assert.ErrorIs(t, page.Apply(Command{Name: "bold"}), ErrNotEditing)
}
