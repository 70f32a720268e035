package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goodcast/goodapi"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of goodapi",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("goodapi version %s\n", strings.TrimSpace(goodapi.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
