package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ali-plastic-pos/internal/config"
	"ali-plastic-pos/internal/model"
	"ali-plastic-pos/internal/repository"

	"gorm.io/gorm"
)

// seedDefaults creates privileges, roles and an approved owner if missing.
// Existing role privilege sets are left alone.
func seedDefaults(ctx context.Context, db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	allPrivileges, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}

	owner, err := roleRepo.FindByCode(ctx, model.RoleOwner)
	if err != nil {
		return fmt.Errorf("load owner role: %w", err)
	}
	if len(owner.Privileges) == 0 {
		if err := roleRepo.AssignPrivileges(ctx, owner, allPrivileges); err != nil {
			return fmt.Errorf("assign owner privileges: %w", err)
		}
		log.Info("owner role assigned all privileges", slog.Int("count", len(allPrivileges)))
	}

	cashier, err := roleRepo.FindByCode(ctx, model.RoleCashier)
	if err != nil {
		return fmt.Errorf("load cashier role: %w", err)
	}
	if len(cashier.Privileges) == 0 {
		cashierPrivileges, err := privilegeRepo.FindByCodes(ctx, model.CashierPrivileges)
		if err != nil {
			return fmt.Errorf("load cashier privileges: %w", err)
		}
		if err := roleRepo.AssignPrivileges(ctx, cashier, cashierPrivileges); err != nil {
			return fmt.Errorf("assign cashier privileges: %w", err)
		}
		log.Info("cashier role assigned counter privileges", slog.Int("count", len(cashierPrivileges)))
	}

	_, err = userRepo.FindByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	admin := &model.User{
		Username:     cfg.AdminUsername,
		RoleID:       &owner.ID,
		IsAuthorized: true,
		Privileges:   allPrivileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("owner account created", slog.String("username", cfg.AdminUsername))
	return nil
}
