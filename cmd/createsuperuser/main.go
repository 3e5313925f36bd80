// Package main реализует консольную команду создания суперпользователя.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"goaccounts/internal/accounts/adapters/postgres"
	"goaccounts/internal/accounts/adapters/services"
	"goaccounts/internal/accounts/app"
	"goaccounts/internal/accounts/config"
	"goaccounts/internal/accounts/db"
	"goaccounts/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger = "failed to initialize logger"
	ErrLoadConfig = "failed to load configuration"
	ErrInitDB     = "failed to initialize database"
	ErrReadInput  = "failed to read input"
)

func main() {
	log, err := logger.NewLogger(logger.Development, "warn")
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	if err := run(ctx, log); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrLoadConfig, err)
	}

	database, err := db.New(ctx, &cfg.Postgres, "migrations/accounts")
	if err != nil {
		return fmt.Errorf("%s: %w", ErrInitDB, err)
	}
	defer database.Close(ctx)

	email, password, err := promptCredentials()
	if err != nil {
		return fmt.Errorf("%s: %w", ErrReadInput, err)
	}

	repoFactory := postgres.NewRepositoryFactory(database.Pool())
	passwordService := services.NewBcrypt(cfg.JWT.BCryptCost)
	accountUseCase := app.NewAccountUseCase(repoFactory.AccountRepository(), passwordService)

	account, err := accountUseCase.CreateSuperuser(ctx, email, password)
	if err != nil {
		return fmt.Errorf("creating superuser: %w", err)
	}

	log.Info(ctx, "superuser created", zap.String("accountID", account.ID))
	fmt.Printf("Superuser %s created successfully\n", account.Email)
	return nil
}

// promptCredentials запрашивает email и пароль; пароль вводится без эха.
func promptCredentials() (string, string, error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Enter email")
	email, err := reader.ReadString('\n')
	if err != nil {
		return "", "", fmt.Errorf("reading email: %w", err)
	}
	email = strings.TrimSpace(email)

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", "", fmt.Errorf("reading password: %w", err)
	}

	return email, string(password), nil
}
