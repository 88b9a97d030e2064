// Command admin runs maintenance tasks against the HelpMe database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/database"
	"github.com/ZhaoZeLuWei/HelpMe/internal/logger"
	"github.com/ZhaoZeLuWei/HelpMe/internal/seed"
)

var (
	envFile   string
	staffRole string
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "HelpMe maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configs.LoadEnvFile(envFile)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the MySQL schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		if err := database.Migrate(dbConn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema migrated")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and, with SEED_DEMO_DATA, demo data",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := configs.GetAppConfig()
		zlog, err := logger.New(app.LogLevel, "console")
		if err != nil {
			return err
		}
		defer zlog.Sync()

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		if err := database.Migrate(dbConn); err != nil {
			return err
		}
		return seed.Seed(dbConn, app, zlog.With(zap.String("cmd", "seed")))
	},
}

var staffCmd = &cobra.Command{
	Use:   "staff",
	Short: "Manage admin console accounts",
}

var staffAddCmd = &cobra.Command{
	Use:   "add <user_name> <password>",
	Short: "Create a staff account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		staff, err := seed.AddStaff(dbConn, args[0], args[1], constants.UserRole(staffRole))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "staff %s created with id %d (%s)\n", staff.UserName, staff.ID, staff.Role)
		return nil
	},
}

var staffResetCmd = &cobra.Command{
	Use:   "reset-password <user_name> <password>",
	Short: "Replace the password of a staff account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		if err := seed.ResetStaffPassword(dbConn, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "password of %s updated\n", args[0])
		return nil
	},
}

func openDB() (*gorm.DB, error) {
	return database.OpenMySQL(configs.GetDBConfig())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path of the .env file")
	staffAddCmd.Flags().StringVar(&staffRole, "role", string(constants.RoleStaff), "staff or admin")

	staffCmd.AddCommand(staffAddCmd, staffResetCmd)
	rootCmd.AddCommand(migrateCmd, seedCmd, staffCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
