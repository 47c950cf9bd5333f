// File path: cmd/animalert/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/animalert/animalert/internal/common"
)

var (
	envFile string
	dbPath  string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "animalert",
	Short: "AnimAlert petitions service",
	Long: `AnimAlert turns citizen wildlife incident reports into numbered PDF
petitions, stores them and emails them to the responsible institution.

Configuration is read from the environment (DB_*, S3_*, SMTP_*, RENDER_*,
ANIMALERT_*), optionally preloaded from a .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := common.Logger()
		if err := godotenv.Load(envFile); err != nil {
			logger.Warn("animalert: .env file not loaded", "path", envFile, "error", err)
		} else {
			logger.Info("animalert: environment loaded", "path", envFile)
		}
		if trimmed := strings.TrimSpace(dbPath); trimmed != "" {
			return os.Setenv("DB_PATH", trimmed)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(previewCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
