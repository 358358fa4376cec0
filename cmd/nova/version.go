package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := struct {
			Version string `json:"version"`
			Commit  string `json:"commit,omitempty"`
		}{version.Get(), version.Commit()}
		return emit(info, func() {
			if info.Commit != "" {
				fmt.Fprintf(stdout, "nova version %s (%s)\n", info.Version, info.Commit)
				return
			}
			fmt.Fprintf(stdout, "nova version %s\n", info.Version)
		})
	},
}
