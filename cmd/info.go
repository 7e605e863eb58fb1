package cmd

import (
	"github.com/spf13/cobra"

	"runic.dev/pkg/runic/internal/controller"
	"runic.dev/pkg/runic/internal/domain"
)

// infoCmd represents the info command.
var infoCmd = newInfoCmd()

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info [script]",
		Short: "Show the resolved entry and its permission grant",
		Long: `Resolve a script the same way run would and print the canonical entry
specifier, the content kind and the permissions the --allow-* flags grant,
without executing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			specifier, err := resolver.ResolveFile(args[0])
			if err != nil {
				return err
			}

			source, err := provider.Open(specifier)
			if err != nil {
				return err
			}

			grant, err := domain.BuildGrant(permissionOptions(cmd.Flags()))
			if err != nil {
				return err
			}

			cmd.Print(controller.RenderEntrySummary(string(specifier), string(source.Kind), grant.Summary()))

			return nil
		},
	}

	configurePermissionFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
