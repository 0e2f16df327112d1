package cli

import (
	"fmt"

	"github.com/samvad-hq/sphere-client/internal/domain"
	"github.com/samvad-hq/sphere-client/pkg/api"
	"github.com/spf13/cobra"
)

func (s *state) loginCommand() *cobra.Command {
	var creds domain.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := s.rt.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			return printEnvelope(s, cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (s *state) registerCommand() *cobra.Command {
	var reg domain.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := s.rt.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return printEnvelope(s, cmd.OutOrStdout(), env)
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&reg.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&reg.Password, "password", "p", "", "Password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (s *state) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := s.rt.Logout(cmd.Context())
			if err != nil {
				return err
			}
			if env.Error != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "backend logout failed: %s; local session cleared\n", *env.Error)
			}
			return s.printValue(cmd.OutOrStdout(), env)
		},
	}
}

func (s *state) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the session token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := api.Fetch(cmd.Context(), s.rt.API().Auth.Me, api.FetchOptions[domain.User]{Notifier: s.rt.Notifier()})
			return printEnvelope(s, cmd.OutOrStdout(), env)
		},
	}
}
