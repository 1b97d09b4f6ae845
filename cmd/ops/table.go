package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"imagepipeline-api/pkg/pipeline"
	"imagepipeline-api/pkg/store"
)

// initTableCmd initializes the "table" command.
func initTableCmd(root *cobra.Command) {
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "Ensure that the DynamoDB record table exists",
		Long:  "Check the pipeline record table, creating it if it does not exist.",
		RunE:  checkTables,
	}
	tableCmd.Flags().StringP("env", "e", "", "Operating environment: dev | test | staging | prod")
	_ = tableCmd.MarkFlagRequired("env")
	root.AddCommand(tableCmd)
}

// checkTables checks the record table in the specified environment.
func checkTables(cmd *cobra.Command, args []string) error {
	err := ops.Init(cmd.Flag("env").Value.String())
	if err != nil {
		return fmt.Errorf("error initializing application: %w", err)
	}
	ctx := context.Background()
	fmt.Printf("Checking table %s in %s\n", ops.Config.TableName, ops.Environment)
	checkTable(ctx, pipeline.NewRecordTable(ops.DBClient, ops.Config))
	return nil
}

// checkTable creates a DynamoDB table if it does not already exist.
func checkTable(ctx context.Context, table store.Table) {
	if !table.IsValid() {
		log.Println("table", table.TableName, "INVALID table definition - skipping")
		return
	}
	exists, err := table.TableExists(ctx)
	if err != nil {
		log.Println("table", table.TableName, "ERROR checking table:", err)
		return
	}
	if !exists {
		if err := table.CreateTable(ctx); err != nil {
			log.Println("table", table.TableName, "ERROR creating table:", err)
		}
	}
}
