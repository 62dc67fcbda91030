package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-funnel/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash an operator password",
	Long:  `Hash a password with bcrypt for use as OPERATOR_PASSWORD_HASH.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(_ *cobra.Command, args []string) error {
	pwCfg, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	hash, err := pwCfg.HashPassword(args[0])
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}
