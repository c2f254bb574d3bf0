package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	authgate "github.com/goliatone/go-authgate"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		password, _ := cmd.Flags().GetString("password")
		roles, _ := cmd.Flags().GetStringSlice("roles")
		useHashid, _ := cmd.Flags().GetBool("hashid")

		cfg, err := Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		db, err := openDatabase(cmd.Context(), cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		repos := authgate.NewRepositoryManager(db)

		handler := authgate.NewRegisterIdentityHandler(repos)
		if err := handler.Execute(cmd.Context(), authgate.RegisterIdentityMessage{
			Subject:   subject,
			Password:  password,
			Roles:     roles,
			UseHashid: useHashid,
		}); err != nil {
			return err
		}

		log.Info().Msgf("identity registered: %s", subject)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("subject", "", "Subject the identity authenticates as")
	registerCmd.Flags().String("password", "", "Plaintext password, hashed before storage")
	registerCmd.Flags().StringSlice("roles", nil, "Roles granted to the identity")
	registerCmd.Flags().Bool("hashid", false, "Derive the record ID from the subject")

	_ = registerCmd.MarkFlagRequired("subject")
	_ = registerCmd.MarkFlagRequired("password")
}
