package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursewarehq/courseware/pkg/db"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print or apply the database schema",
	Long: `Print the courseware DDL, or apply it to the database named by
DATABASE_URL. The DDL is idempotent.

Example:
  coursectl schema
  coursectl schema --apply`,
	Run: func(cmd *cobra.Command, args []string) {
		apply, _ := cmd.Flags().GetBool("apply")
		if !apply {
			fmt.Print(db.Schema)
			return
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Unable to connect to DB:", err)
			os.Exit(1)
		}
		if err := db.ApplySchema(database); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Schema applied.")
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("apply", false, "apply the schema to DATABASE_URL")
}
