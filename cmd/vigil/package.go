package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vigilmon/vigil/pkg/confpkg"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Manage config packages and stages",
}

var packageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List config packages and their active stages",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		store := confpkg.NewStore(dataDir, nil)

		pkgs, err := store.ListPackages()
		if err != nil {
			return err
		}

		if len(pkgs) == 0 {
			fmt.Println("No config packages.")
			return nil
		}

		fmt.Printf("%-20s %s\n", "PACKAGE", "ACTIVE STAGE")
		for _, pkg := range pkgs {
			active := store.GetActiveStage(pkg)
			if active == "" {
				active = "(none)"
			}
			fmt.Printf("%-20s %s\n", pkg, active)
		}
		return nil
	},
}

var packageRepairCmd = &cobra.Command{
	Use:   "repair <package>",
	Short: "Repair a package with no recorded active stage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		store := confpkg.NewStore(dataDir, nil)

		if err := store.RepairPackage(args[0]); err != nil {
			return err
		}

		fmt.Printf("✓ Repaired package '%s', active stage: %s\n", args[0], store.GetActiveStage(args[0]))
		return nil
	},
}

func init() {
	packageCmd.AddCommand(packageListCmd)
	packageCmd.AddCommand(packageRepairCmd)
}
