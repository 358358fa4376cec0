package main

import (
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
)

var teamRole string

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "List personas and the models backing them",
	Args:  cobra.NoArgs,
	RunE:  withCore(runTeam),
}

func init() {
	teamCmd.Flags().StringVar(&teamRole, "role", "", "Only show one role (reasoning, universal, coding, creative)")
}

func runTeam(cmd *cobra.Command, args []string, c *core.Core) error {
	team, err := c.Team(teamRole)
	if err != nil {
		return err
	}
	return emit(team, func() {
		rows := make([][]string, 0, len(team))
		for _, m := range team {
			rows = append(rows, []string{m.Name, m.Title, string(m.Role), m.Model, string(m.Status)})
		}
		printTable([]string{"NAME", "TITLE", "ROLE", "MODEL", "STATUS"}, rows)
	})
}
