package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"runic.dev/pkg/runic/internal/adapter"
	"runic.dev/pkg/runic/internal/domain"
	m "runic.dev/pkg/runic/internal/model"
)

const runLongDescription = `Run a script from a file, or from standard input when the script argument
is "-".

Permissions are granted with the --allow-* flags and must appear before the
script argument; anything after it is passed to the script. With --watch the
program is restarted whenever the script or a file it loads changes (stdin
runs are not watchable).`

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [script] [args...]",
		Short: "Run a script",
		Long:  runLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := permissionOptions(cmd.Flags())
			scriptArgs := args[1:]
			warnMisplacedPermissions(opts, scriptArgs)

			watch, _ := cmd.Flags().GetBool(watchFlagName)

			if args[0] == "-" {
				if watch {
					return fmt.Errorf("%w: standard input cannot be watched for changes", domain.ErrConfig)
				}

				return runFromStdin(cmd.Context(), opts, scriptArgs)
			}

			if watch {
				return runWithWatch(cmd.Context(), args[0], opts, scriptArgs)
			}

			return runScript(cmd.Context(), args[0], opts, scriptArgs)
		},
	}

	// Tokens after the script argument belong to the script, not to runic.
	cmd.Flags().SetInterspersed(false)

	configurePermissionFlags(cmd)
	configureWatchFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureWatchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(watchFlagName, false, "restart the script when watched files change")

	cmd.Flags().Bool(noClearScreenFlagName, viper.GetBool(noClearScreenConfigKey), "do not clear the terminal between watch restarts")
	bindFlagToConfig(cmd.Flags().Lookup(noClearScreenFlagName), noClearScreenConfigKey)
}

// runScript resolves the entry, builds one grant and runs one worker to
// completion, recording the script's exit code.
func runScript(ctx context.Context, script string, opts m.PermissionOptions, scriptArgs []string) error {
	specifier, err := resolver.ResolveFile(script)
	if err != nil {
		return err
	}

	// Detached: the upgrade check swallows its own failures and never
	// touches this run's error channel.
	adapter.NewUpgradeChecker(viper.GetString(upgradeURLKey), viper.GetString(upgradeStampKey)).CheckDetached()

	return runResolved(ctx, specifier, opts, scriptArgs)
}

// runFromStdin buffers all of standard input, registers it as a virtual
// typed script at the resolved main-module specifier, then runs once.
func runFromStdin(ctx context.Context, opts m.PermissionOptions, scriptArgs []string) error {
	specifier := resolver.ResolveStdin()

	source, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	if _, err := injector.Inject(specifier, source, m.ContentScript); err != nil {
		return err
	}

	return runResolved(ctx, specifier, opts, scriptArgs)
}

// runResolved is the shared non-watch execution path: fresh grant, fresh
// worker, one run, exit code passed through.
func runResolved(ctx context.Context, specifier m.Specifier, opts m.PermissionOptions, scriptArgs []string) error {
	grant, err := domain.BuildGrant(opts)
	if err != nil {
		return err
	}

	workers := domain.NewWorkerFactory(newEngine(nil), provider)

	worker, err := workers.CreateWorker(ctx, specifier, grant, scriptArgs...)
	if err != nil {
		return err
	}

	code, err := worker.Run(ctx)
	if err != nil {
		return err
	}

	exitCode = code

	return nil
}

// runWithWatch hands the run over to the watch supervisor. Watch mode has no
// terminal exit code: it runs until externally stopped and then reports
// success.
func runWithWatch(parent context.Context, script string, opts m.PermissionOptions, scriptArgs []string) error {
	specifier, err := resolver.ResolveFile(script)
	if err != nil {
		return err
	}

	tracker := domain.NewDepTracker()

	notifier, err := adapter.NewChangeNotifier(tracker, script)
	if err != nil {
		return err
	}

	workers := domain.NewWorkerFactory(newEngine(tracker), provider)
	factory := domain.NewAttemptFactory(specifier, opts, workers, tracker, scriptArgs...)

	config := domain.PrintConfig{
		JobLabel:    viper.GetString(jobLabelConfigKey),
		ClearScreen: !viper.GetBool(noClearScreenConfigKey),
	}

	supervisor := domain.NewSupervisor(notifier.Events(), factory, config, display)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return notifier.Run(ctx)
	})

	group.Go(func() error {
		defer notifier.Close()
		return supervisor.Run(ctx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// warnMisplacedPermissions emits a one-time advisory when no permission was
// granted but permission-looking flags trail the script argument, where they
// are passed to the script instead of parsed. Diagnostic only.
func warnMisplacedPermissions(opts m.PermissionOptions, scriptArgs []string) {
	if !opts.Empty() || !hasPermissionToken(scriptArgs) {
		return
	}

	display.Warn(`Permission flags have likely been incorrectly set after the script argument.
To grant permissions, set them before the script argument. For example:
    runic run --allow-read=. main.js`)
}

func hasPermissionToken(args []string) bool {
	for _, arg := range args {
		if arg == "-A" || arg == "--allow-all" || strings.HasPrefix(arg, "--allow-") {
			return true
		}
	}

	return false
}
