package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goodcast/goodapi/pkg/leafwatch"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the Leafwatch event catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := leafwatch.LoadCatalog(cfg.CatalogPath)
		if err != nil {
			return err
		}

		if tree, _ := cmd.Flags().GetBool("tree"); tree {
			out, err := yaml.Marshal(catalog.Tree())
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}

		for _, name := range catalog.Names() {
			key, _ := catalog.Key(name)
			fmt.Printf("%-32s %s\n", name, key)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("tree", false, "Print the nested catalog as YAML")
}
