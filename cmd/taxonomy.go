package cmd

import (
	"github.com/spf13/cobra"
)

func newTaxonomyCMD() *cobra.Command {
	category := &cobra.Command{
		Use:   "category NAME",
		Short: "add a post category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			a, err := loadApp(cmd.Context(), newLogger(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.blog.CreateCategory(cmd.Context(), args[0], desc)
			if err != nil {
				return err
			}
			cmd.Println(c.ID, c.Slug)
			return nil
		},
	}
	category.Flags().String("description", "", "shown on the category badge tooltip")

	tag := &cobra.Command{
		Use:   "tag NAME",
		Short: "add a post tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), newLogger(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			t, err := a.blog.CreateTag(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Println(t.ID, t.Slug)
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "add categories and tags",
	}
	add.AddCommand(category, tag)
	return add
}
