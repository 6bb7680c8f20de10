package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/internal/admins"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const generatedPasswordLength = 20

func main() {
	logg := logger.New(logger.Options{ServiceName: "create-admin"})
	_ = godotenv.Load()

	email := flag.String("email", "", "admin email (required)")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "initial password; generated and printed when empty")
	role := flag.String("role", string(enums.AdminRoleOwner), "owner|staff")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: create-admin -email <email> [-password <password>] [-name <name>] [-role owner|staff]")
		os.Exit(2)
	}
	generated := *password == ""
	if generated {
		pw, err := security.GeneratePassword(generatedPasswordLength)
		requireResource(logg, "password", err)
		*password = pw
	}
	parsedRole, err := enums.ParseAdminRole(*role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -role: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	requireResource(logg, "database", err)
	defer dbClient.Close()

	svc, err := admins.NewService(admins.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)
	requireResource(logg, "admins service", err)

	profile, err := svc.Create(context.Background(), admins.CreateInput{
		Email:    *email,
		Name:     *name,
		Password: *password,
		Role:     parsedRole,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create admin failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("created %s admin %s (%s)\n", profile.Role, profile.Email, profile.ID)
	if generated {
		fmt.Printf("temporary password: %s\n", *password)
	}
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
