package main

import (
	"context"
	"errors"
	"fmt"

	"identity-gateway/bootstrap"
	"identity-gateway/internal/identity"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/spf13/cobra"
)

func newSyncCommand() *cobra.Command {
	var pageSize int64

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull every user from Clerk and upsert them into the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if !bootstrap.InitClerk(a.env.ClerkSecretKey, a.logger) {
				return errors.New("CLERK_SECRET_KEY not found in environment variables")
			}

			uc, err := a.identityUseCase()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "🔄 Starting Clerk user sync...")
			report, err := uc.Resync(ctx, identity.NewClerkSource(pageSize))
			if report != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n📊 Sync summary: total %d, created %d, updated %d, failed %d\n",
					report.Total, report.Created, report.Updated, report.Failed)
			}
			return err
		},
	}

	cmd.Flags().Int64Var(&pageSize, "page-size", identity.DefaultPageSize, "Users fetched per Clerk API request (max 100)")
	return cmd
}

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the Clerk credentials and list the first users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			// 只需要 Clerk 密钥，不连接数据库
			env, err := bootstrap.ParseClerkEnv()
			if err != nil {
				return err
			}
			clerk.SetKey(env.SecretKey)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Checking Clerk environment...")
			fmt.Fprintf(out, "Key type: %s mode\n", bootstrap.KeyMode(env.SecretKey))

			params := &user.ListParams{}
			params.Limit = clerk.Int64(3)
			list, err := user.List(ctx, params)
			if err != nil {
				return fmt.Errorf("list clerk users: %w", err)
			}

			fmt.Fprintf(out, "\nConnected successfully! Found %d users.\n", list.TotalCount)
			for _, u := range list.Users {
				if u == nil {
					continue
				}
				email := identity.SnapshotFromClerkUser(u).Email
				if email == "" {
					email = "No email"
				}
				fmt.Fprintf(out, "  - %s | %s\n", u.ID, email)
			}
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
