package cmd

import (
	"context"
	"fmt"

	"github.com/vibast-solutions/ms-go-users/app/repository"
	"github.com/vibast-solutions/ms-go-users/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the demo sequence against the configured database",
	Long:  `Open the user store, add a user, look it up, update its email, and print each result.`,
	Run:   runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(_ *cobra.Command, _ []string) {
	cfg := config.Load()
	configureLogging(cfg)

	store, err := repository.Open(cfg.DatabasePath, cfg.ResetOnStart)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open user store")
	}
	defer store.Close()

	ctx := context.Background()

	user, err := store.AddUser(ctx, "test@example.com", "hashed_password")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to add user")
	}
	fmt.Printf("added user %d <%s>\n", user.ID, user.Email)

	found, err := store.FindUserBy(ctx, repository.ByEmail("test@example.com"))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to find user by email")
	}
	fmt.Printf("found user %d <%s>\n", found.ID, found.Email)

	if err := store.UpdateUser(ctx, user.ID, repository.SetEmail("new_email@example.com")); err != nil {
		logrus.WithError(err).Fatal("Failed to update user")
	}

	updated, err := store.FindUserBy(ctx, repository.ByID(user.ID))
	if err != nil {
		logrus.WithError(err).Fatal("Failed to find user by id")
	}
	fmt.Printf("updated user %d <%s>\n", updated.ID, updated.Email)
}

// Routine operation stays quiet: anything below the configured level
// (warning by default) is suppressed.
func configureLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logrus.SetLevel(level)
}
