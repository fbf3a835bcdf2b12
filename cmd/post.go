package cmd

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"folio/domain"
	"folio/editor"
)

func newPostCMD() *cobra.Command {
	post := &cobra.Command{
		Use:   "post",
		Short: "manage posts",
	}

	imp := &cobra.Command{
		Use:   "import FILE.md",
		Short: "import a Markdown file as a post",
		Long:  `import a Markdown file as a post; the title comes from the first "# " heading or the file name`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			author, _ := cmd.Flags().GetString("author")
			publish, _ := cmd.Flags().GetBool("publish")
			slug, _ := cmd.Flags().GetString("slug")
			excerpt, _ := cmd.Flags().GetString("excerpt")
			categoryID, _ := cmd.Flags().GetString("category")
			tagIDs, _ := cmd.Flags().GetStringSlice("tags")

			a, err := loadApp(cmd.Context(), newLogger(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			u, _, err := a.users.ByEmail(cmd.Context(), author)
			if err != nil {
				return err
			}

			title, body := splitTitle(raw, args[0])
			if slug == "" {
				slug = domain.Slugify(title)
			}
			p, err := a.blog.CreatePost(cmd.Context(), u.Session(), domain.PostInput{
				Title:      title,
				Slug:       slug,
				Content:    editor.FromMarkdown(body),
				Excerpt:    excerpt,
				CategoryID: categoryID,
				Published:  publish,
				TagIDs:     tagIDs,
			})
			if err != nil {
				return err
			}
			cmd.Println(p.ID, "/blog/"+p.Slug)
			return nil
		},
	}
	imp.Flags().String("author", "", "email of the administrator the post is credited to")
	imp.Flags().Bool("publish", false, "publish right away instead of saving a draft")
	imp.Flags().String("slug", "", "slug; derived from the title when empty")
	imp.Flags().String("excerpt", "", "summary shown on the blog listing")
	imp.Flags().String("category", "", "category id")
	imp.Flags().StringSlice("tags", nil, "tag ids, comma separated")
	_ = imp.MarkFlagRequired("author")

	post.AddCommand(imp)
	return post
}

// splitTitle takes the first level one heading as the title and returns the
// rest of the document. Without one the file name is the title.
func splitTitle(raw []byte, path string) (string, string) {
	var rest bytes.Buffer
	title := ""
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), len(raw)+1)
	for sc.Scan() {
		line := sc.Text()
		if title == "" && strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}
		rest.WriteString(line)
		rest.WriteByte('\n')
	}
	if title == "" {
		name := filepath.Base(path)
		name = strings.TrimSuffix(name, filepath.Ext(name))
		title = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(name))
		return title, string(raw)
	}
	return title, rest.String()
}
