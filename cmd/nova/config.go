package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/config"
	"github.com/SharminSirajudeen/nova/internal/core"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View or modify nova configuration.

Without a subcommand, displays every effective value.

Configuration is stored at ~/.config/nova/config.yaml
Project-specific overrides can be placed in .nova.yaml
Environment variables NOVA_<SECTION>_<KEY> override both.`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Store a value in the user config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

// displayValue hides secrets.
func displayValue(key string, v any) any {
	if key == "anthropic.api_key" {
		s, _ := v.(string)
		return config.MaskAPIKey(s)
	}
	return v
}

// configError turns config package errors into command errors.
func configError(err error) error {
	return &core.CommandError{Code: core.CodeInvalidArgument, Message: err.Error(), Err: err}
}

func runConfigList(cmd *cobra.Command, args []string) error {
	values := make(map[string]any)
	for _, key := range config.Keys() {
		v, err := config.Get(key)
		if err != nil {
			return configError(err)
		}
		values[key] = displayValue(key, v)
	}
	return emit(values, func() {
		for _, key := range config.Keys() {
			fmt.Fprintf(stdout, "%s: %v\n", key, values[key])
		}
	})
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	v, err := config.Get(args[0])
	if err != nil {
		return configError(err)
	}
	v = displayValue(args[0], v)
	return emit(map[string]any{args[0]: v}, func() { fmt.Fprintln(stdout, v) })
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if err := config.Set(key, value); err != nil {
		return configError(err)
	}
	return emit(map[string]any{key: displayValue(key, value)}, func() {
		printStatus("✓", fmt.Sprintf("Set %s = %v", key, displayValue(key, value)), color.FgGreen)
	})
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	paths := struct {
		User    string `json:"user"`
		Project string `json:"project,omitempty"`
	}{config.GetUserConfigPath(), config.GetProjectConfigPath()}
	return emit(paths, func() {
		fmt.Fprintf(stdout, "user:    %s\n", paths.User)
		if paths.Project != "" {
			fmt.Fprintf(stdout, "project: %s\n", paths.Project)
		}
	})
}
