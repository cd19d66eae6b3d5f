package main

import (
	"fmt"
	"os"

	"identity-gateway/bootstrap"
	"identity-gateway/internal/codegen"
	"identity-gateway/internal/events"
	"identity-gateway/internal/webhook"
	"identity-gateway/repository"
	"identity-gateway/usecase"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "gatewayctl",
		Short:         "Maintenance tool for the identity gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// 开发环境从 .env 读取，缺失时使用系统环境变量
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newSyncCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newInviteCommand())
	cmd.AddCommand(newClearDBCommand())
	return cmd
}

// app 命令共用的依赖
type app struct {
	env       *bootstrap.Env
	logger    *zap.Logger
	db        *gorm.DB
	publisher events.Publisher
}

func newApp() (*app, error) {
	env, err := bootstrap.ParseEnv()
	if err != nil {
		return nil, err
	}
	logger, err := bootstrap.NewLogger(env.LogLevel, env.AppEnv)
	if err != nil {
		return nil, err
	}
	db, err := bootstrap.NewDatabase(env.DatabaseURL, false, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		env:       env,
		logger:    logger,
		db:        db,
		publisher: bootstrap.NewPublisher(env.NATSURL, logger),
	}, nil
}

func (a *app) close() {
	a.publisher.Close()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) identityUseCase() (*usecase.IdentityUseCase, error) {
	// 全量同步不经过 Webhook，校验器只是占位
	verifier, err := webhook.NewVerifier("", 0)
	if err != nil {
		return nil, err
	}
	return usecase.NewIdentityUseCase(
		repository.NewTransactor(a.db),
		repository.NewUserRepository(a.db),
		repository.NewWebhookEventRepository(a.db),
		verifier,
		a.publisher,
		a.logger,
		a.env.UseCaseOptions(),
	), nil
}

func (a *app) invitationUseCase() *usecase.InvitationUseCase {
	return usecase.NewInvitationUseCase(
		repository.NewTransactor(a.db),
		repository.NewInvitationRepository(a.db),
		repository.NewUserRepository(a.db),
		codegen.NewRandomGenerator(0),
		a.publisher,
		a.logger,
		a.env.UseCaseOptions(),
	)
}
