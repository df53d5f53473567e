package main

import (
	"github.com/krakosik/symposium/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := repository.Open(configFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}
			logrus.Info("Schema is up to date")
			return nil
		},
	}
}
