package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"capstone/insights/internal/auth"
)

var secretValue string

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage per-account login secrets",
}

var secretHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Print the bcrypt hash of a secret",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readSecret(cmd.InOrStdin(), secretValue)
		if err != nil {
			return err
		}
		h, err := auth.HashSecret(secret, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var secretSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store the bcrypt hash of a secret for one account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := OpenDatabase()
		if err != nil {
			return err
		}
		defer d.Close()
		account, err := d.GetAccount(args[0])
		if err != nil {
			return err
		}
		if account == nil {
			return fmt.Errorf("unknown account %q", args[0])
		}
		secret, err := readSecret(cmd.InOrStdin(), secretValue)
		if err != nil {
			return err
		}
		h, err := auth.HashSecret(secret, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		if err := d.SetSecretHash(args[0], h); err != nil {
			return err
		}
		logger.WithField("account", args[0]).Info("secret updated")
		fmt.Fprintf(cmd.OutOrStdout(), "Secret set for %s\n", args[0])
		return nil
	},
}

func init() {
	secretCmd.PersistentFlags().StringVar(&secretValue, "secret", "", "Secret value (read from stdin when empty)")
	secretCmd.AddCommand(secretHashCmd, secretSetCmd)
	rootCmd.AddCommand(secretCmd)
}
