package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show or switch the operating mode",
	Long: `Show or switch between personal and company mode.

Switching keeps the active project and the conversation.`,
	RunE: withCore(runModeGet),
}

var modeGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current mode",
	Args:  cobra.NoArgs,
	RunE:  withCore(runModeGet),
}

var modeSetCmd = &cobra.Command{
	Use:       "set <personal|company>",
	Short:     "Switch mode",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"personal", "company"},
	RunE:      withCore(runModeSet),
}

func init() {
	modeCmd.AddCommand(modeGetCmd)
	modeCmd.AddCommand(modeSetCmd)
}

func runModeGet(cmd *cobra.Command, args []string, c *core.Core) error {
	info := c.ModeGet()
	return emit(info, func() { printModeInfo(info) })
}

func runModeSet(cmd *cobra.Command, args []string, c *core.Core) error {
	info, err := c.ModeSet(args[0])
	if err != nil {
		return err
	}
	return emit(info, func() {
		printStatus("✓", fmt.Sprintf("Switched to %s mode", info.Mode), color.FgGreen)
		printModeInfo(info)
	})
}

func printModeInfo(info core.ModeInfo) {
	fmt.Fprintf(stdout, "Mode:           %s\n", info.Mode)
	fmt.Fprintf(stdout, "Tier:           %d (%s)\n", int(info.Tier), info.Tier)
	if info.ActiveProject != "" {
		fmt.Fprintf(stdout, "Active project: %s\n", info.ActiveProject)
	}
}
