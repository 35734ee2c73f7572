package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"ali-plastic-pos/internal/config"
	"ali-plastic-pos/internal/repository"
	"ali-plastic-pos/pkg/database"
	applog "ali-plastic-pos/pkg/logger"

	"github.com/google/uuid"
)

// reset-password <username> <new-password>
//
// Sets a new password and rotates the session token so existing logins end.
func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: reset-password <username> <new-password>")
		os.Exit(2)
	}
	username, newPassword := os.Args[1], os.Args[2]
	if len(newPassword) < 6 {
		fmt.Fprintln(os.Stderr, "new password must be at least 6 characters")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}
	log := applog.New(cfg.LogFormat)

	db, err := database.ConnectDB(cfg.Database())
	if err != nil {
		log.Error("database", slog.Any("error", err))
		os.Exit(1)
	}

	ctx := context.Background()
	users := repository.NewUserRepo(db)

	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		log.Error("user not found", slog.String("username", username), slog.Any("error", err))
		os.Exit(1)
	}

	if err := user.SetPassword(newPassword); err != nil {
		log.Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}
	user.TokenVersion = uuid.NewString()
	user.UpdatedBy = "system"
	if err := users.Update(ctx, user); err != nil {
		log.Error("update password", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("password reset", slog.String("username", username))
}
