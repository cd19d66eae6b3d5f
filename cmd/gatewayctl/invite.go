package main

import (
	"encoding/json"

	"identity-gateway/usecase"

	"github.com/spf13/cobra"
)

func newInviteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invitation operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newInviteCreateCommand())
	return cmd
}

func newInviteCreateCommand() *cobra.Command {
	var (
		email         string
		createdBy     string
		expiresInDays int
		maxUses       int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new invitation code",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			in := usecase.CreateInvitationInput{}
			if cmd.Flags().Changed("email") {
				in.Email = &email
			}
			if cmd.Flags().Changed("created-by") {
				in.CreatedByID = &createdBy
			}
			if cmd.Flags().Changed("expires-in-days") {
				in.ExpiresInDays = &expiresInDays
			}
			if cmd.Flags().Changed("max-uses") {
				in.MaxUses = &maxUses
			}

			inv, err := a.invitationUseCase().Create(ctx, in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(inv)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Intended recipient (informational)")
	cmd.Flags().StringVar(&createdBy, "created-by", "", "Clerk user id of the issuer")
	cmd.Flags().IntVar(&expiresInDays, "expires-in-days", 0, "Days until the code expires (omit for no expiry)")
	cmd.Flags().IntVar(&maxUses, "max-uses", 1, "Number of redemptions allowed")
	return cmd
}
