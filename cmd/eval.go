package cmd

import (
	"github.com/spf13/cobra"
)

const evalLongDescription = `Evaluate an inline code string. The code is registered as a virtual
main module and run once; eval runs are not watchable.

With --print the code is treated as an expression and its value is printed:
    runic eval --print "6*7"`

// evalCmd represents the eval command.
var evalCmd = newEvalCmd()

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [code]",
		Short: "Evaluate an inline code string",
		Long:  evalLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := permissionOptions(cmd.Flags())
			print, _ := cmd.Flags().GetBool(printFlagName)

			specifier := resolver.ResolveEval()

			if _, err := injector.InjectEval(specifier, args[0], print); err != nil {
				return err
			}

			return runResolved(cmd.Context(), specifier, opts, nil)
		},
	}

	cmd.Flags().BoolP(printFlagName, "p", false, "print the value of the evaluated expression")
	configurePermissionFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(evalCmd)
}
