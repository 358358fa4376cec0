package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
)

var askPersona string

var askCmd = &cobra.Command{
	Use:   "ask <goal>",
	Short: "Ask the best-fit persona (personal mode)",
	Long: `Route a request to a persona and print the answer.

The persona is chosen from the request text unless --persona names one.
If the model behind that persona is unavailable, the request falls back
along the role chain and the answer notes which model served it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withCore(runAsk),
}

func init() {
	askCmd.Flags().StringVar(&askPersona, "persona", "", "Persona key or name to answer as")
}

func runAsk(cmd *cobra.Command, args []string, c *core.Core) error {
	res, err := c.Ask(cmd.Context(), strings.Join(args, " "), askPersona)
	if err != nil {
		return err
	}
	return emit(res, func() {
		fmt.Fprintf(stdout, "%s\n\n", titleStyle.Render(res.Name))
		fmt.Fprintln(stdout, res.Output)
		served := res.Model
		if res.ServedBy != res.Role {
			served = fmt.Sprintf("%s, fallback from %s", res.Model, res.Role)
		}
		fmt.Fprintf(stdout, "\n%s\n", mutedStyle.Render(fmt.Sprintf("%s · tier %d · %s", res.Role, int(res.Tier), served)))
	})
}
