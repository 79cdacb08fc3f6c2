package main

import (
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"github.com/ManuelReschke/FeeFox/internal/pkg/billing"
	"github.com/ManuelReschke/FeeFox/internal/pkg/database"
	"github.com/ManuelReschke/FeeFox/internal/pkg/env"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "feefoxctl",
	Short: "Operator tool for FeeFox billing",
	Long: `feefoxctl runs billing maintenance tasks against the FeeFox database:
bulk imports, monthly record generation and report exports.

Configuration is read from .env and the process environment (DB_*, S3_*).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.SetupEnvFile()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Errorf("[CLI] %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newService connects to the database and builds the billing service.
func newService() *billing.Service {
	database.SetupDatabase()
	return billing.NewServiceFromDB(database.GetDB(),
		billing.WithPaidRule(billing.ParsePaidRule(env.GetEnv("BILLING_PAID_RULE", ""))),
	)
}
