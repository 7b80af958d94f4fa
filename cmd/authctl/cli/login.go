package cli

import (
	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	authclient "github.com/goliatone/go-auth-client"
)

func LoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "login",
		Short:         "Log in and store the session",
		Long:          `Authenticate against the login endpoint. Missing credentials are prompted for.`,
		SilenceUsage:  true,
		PreRun: func(cmd *cobra.Command, args []string) {
			viper.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.GetViper()

			credentials := authclient.Credentials{
				Username: v.GetString("username"),
				Password: v.GetString("password"),
			}

			if credentials.Username == "" {
				username, err := promptForUsername()
				if err != nil {
					return promptError(err)
				}
				credentials.Username = username
			}

			if credentials.Password == "" {
				password, err := promptForPassword()
				if err != nil {
					return promptError(err)
				}
				credentials.Password = password
			}

			a, err := newApp(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer a.Close()

			session, err := a.store.Login(cmd.Context(), credentials)
			if err != nil {
				return errors.Wrap(err, "failed to log in")
			}

			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}

	cmd.Flags().StringP("username", "u", "", "login identifier")
	cmd.Flags().StringP("password", "p", "", "password, prompted for when omitted")

	return cmd
}

func promptError(err error) error {
	if err == promptui.ErrInterrupt {
		return errors.New("interrupted")
	}
	return err
}
