package cmd

import (
	"errors"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"folio/auth"
	"folio/domain"
)

func newUserCMD() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "manage accounts",
	}

	create := &cobra.Command{
		Use:   "create EMAIL",
		Short: "create an account",
		Long:  `create an account; --admin provisions an administrator, which is how the first one is made`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			role := domain.RoleUser
			if isAdmin, _ := cmd.Flags().GetBool("admin"); isAdmin {
				role = domain.RoleAdmin
			}

			logger := newLogger(cmd)
			a, err := loadApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u, err := a.users.Create(cmd.Context(), args[0], hash, role)
			if err != nil {
				return err
			}
			logger.Infoj(log.JSON{"msg": "user created", "user_id": u.ID, "email": u.Email, "role": u.Role})
			cmd.Println(u.ID)
			return nil
		},
	}
	create.Flags().String("password", "", "account password")
	create.Flags().Bool("admin", false, "grant the administrator role")
	_ = create.MarkFlagRequired("password")

	promote := &cobra.Command{
		Use:   "promote EMAIL",
		Short: "grant the administrator role to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := domain.RoleAdmin
			if revoke, _ := cmd.Flags().GetBool("revoke"); revoke {
				role = domain.RoleUser
			}

			logger := newLogger(cmd)
			a, err := loadApp(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer a.Close()

			u, _, err := a.users.ByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.users.SetRole(cmd.Context(), u.ID, role); err != nil {
				return err
			}
			logger.Infoj(log.JSON{"msg": "role changed", "user_id": u.ID, "role": role})
			return nil
		},
	}
	promote.Flags().Bool("revoke", false, "take the administrator role away instead")

	user.AddCommand(create, promote)
	return user
}
