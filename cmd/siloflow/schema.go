package main

import (
	"fmt"
	"strings"

	"github.com/cuemby/siloflow/pkg/config"
	"github.com/cuemby/siloflow/pkg/registry"
	"github.com/cuemby/siloflow/pkg/types"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Administer the Schema Registry (C3)",
}

var schemaPutCmd = &cobra.Command{
	Use:   "put <id>",
	Short: "Register a new schema (fails if the id already exists)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		regex, _ := cmd.Flags().GetString("regex")
		columnsRaw, _ := cmd.Flags().GetStringSlice("column")
		if regex == "" {
			return fmt.Errorf("--regex is required")
		}

		columns, err := parseColumns(columnsRaw)
		if err != nil {
			return err
		}

		reg, err := openLocalRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Shutdown()

		schema := types.Schema{ID: args[0], Regex: regex, Columns: columns}
		if err := reg.Put(schema); err != nil {
			return fmt.Errorf("failed to put schema: %w", err)
		}
		fmt.Printf("Schema %q registered with %d columns\n", schema.ID, len(schema.Columns))
		return nil
	},
}

var schemaGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a registered schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		reg, err := openLocalRegistry(cfg)
		if err != nil {
			return err
		}
		defer reg.Shutdown()

		schema, err := reg.Get(args[0])
		if err != nil {
			return fmt.Errorf("failed to get schema: %w", err)
		}
		fmt.Printf("id:    %s\n", schema.ID)
		fmt.Printf("regex: %s\n", schema.Regex)
		fmt.Println("columns:")
		for _, c := range schema.Columns {
			fmt.Printf("  - %s (%s, nullable=%v)\n", c.Name, c.Type, c.Nullable)
		}
		return nil
	},
}

// openLocalRegistry opens the on-disk registry in bootstrap mode, for
// single-node administration from the same box that runs the control
// service. A remote admin RPC is out of scope (see spec.md's open
// questions on registry cluster membership).
func openLocalRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg, err := registry.New(registry.Config{
		NodeID:   cfg.Control.RegistryNodeID,
		BindAddr: cfg.Control.RegistryBindAddr,
		DataDir:  cfg.Control.RegistryDataDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open schema registry: %w", err)
	}
	if err := reg.Bootstrap(); err != nil {
		return nil, fmt.Errorf("failed to bootstrap schema registry: %w", err)
	}
	return reg, nil
}

// parseColumns parses "name:type[:nullable]" flag values into Columns.
func parseColumns(raw []string) ([]types.Column, error) {
	columns := make([]types.Column, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid --column %q, want name:type[:nullable]", r)
		}
		col := types.Column{Name: parts[0], Type: types.ColumnType(parts[1])}
		if len(parts) > 2 && parts[2] == "nullable" {
			col.Nullable = true
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func init() {
	schemaCmd.AddCommand(schemaPutCmd, schemaGetCmd)
	schemaPutCmd.Flags().String("regex", "", "Regular expression with named capture groups")
	schemaPutCmd.Flags().StringSlice("column", nil, "Column spec name:type[:nullable], repeatable")
}
