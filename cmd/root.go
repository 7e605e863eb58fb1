// Package cmd provides the root command and CLI setup for runic.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"runic.dev/pkg/runic/internal/adapter"
	"runic.dev/pkg/runic/internal/controller"
	"runic.dev/pkg/runic/internal/domain"
	m "runic.dev/pkg/runic/internal/model"
)

var sourceCache *adapter.MemorySourceCache
var injector *domain.Injector
var resolver *adapter.EntryResolver
var provider domain.SourceProvider
var display controller.Display

// newEngine builds the execution engine for one run. Tests swap it for a
// fake so commands can be exercised without an interpreter installed.
var newEngine func(tracker *domain.DepTracker) domain.Engine

// stdin is read fully before a stdin-sourced run starts.
var stdin io.Reader = os.Stdin

// exitCode is the script's exit code, passed through verbatim by Execute.
var exitCode int

// verboseFlag enables debug logging.
var verboseFlag bool

// logFileFlag overrides the log file location.
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	sourceCache = adapter.NewMemorySourceCache()
	injector = domain.NewInjector(sourceCache)
	resolver = adapter.NewEntryResolver(sourceCache)
	provider = adapter.NewCacheFSProvider(sourceCache)
	display = controller.NewConsoleDisplay(os.Stderr, controller.IsTTY(os.Stderr))
	newEngine = func(tracker *domain.DepTracker) domain.Engine {
		engine := adapter.NewCommandEngine(viper.GetString(engineCommandKey), tracker)
		engine.SetEvalFlag(viper.GetString(engineEvalFlagKey))

		return engine
	}
}

const rootLongDescription = `Runic runs scripts inside a managed worker with an explicit permission
grant. Scripts come from a file, from standard input (pass "-") or from an
inline code string (the eval command), and watch mode restarts the program
whenever a watched file changes.

Permissions are granted with the --allow-* flags before the script argument:
    runic run --allow-read=. main.js`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runic",
		Short: "Script execution orchestrator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", viper.GetBool(logVerboseKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup("verbose"), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "log file location (default "+defaultLogFilename+")")
}

// configurePermissionFlags wires the shared --allow-* flags onto a command
// that executes scripts. The flags are not bound to viper, because several
// commands register the same keys and viper keeps only the last binding;
// permissionOptions merges config/env values in at run time instead.
func configurePermissionFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.BoolP(allowAllFlagName, "A", false, "grant all permissions")
	flags.StringSlice(allowReadFlagName, nil, "grant read access to the given paths")
	flags.StringSlice(allowWriteFlagName, nil, "grant write access to the given paths")
	flags.StringSlice(allowNetFlagName, nil, "grant network access to the given hosts")
	flags.StringSlice(allowEnvFlagName, nil, "grant access to the given environment variables")
	flags.StringSlice(allowRunFlagName, nil, "grant permission to run the given subprocesses")
}

// permissionOptions assembles the declarative permission configuration for
// one invocation. Config file and environment values are read from viper at
// call time; a flag set on the command line overrides them.
func permissionOptions(flags *pflag.FlagSet) m.PermissionOptions {
	opts := m.PermissionOptions{
		AllowAll:   viper.GetBool(allowAllConfigKey),
		AllowRead:  viper.GetStringSlice(allowReadConfigKey),
		AllowWrite: viper.GetStringSlice(allowWriteConfigKey),
		AllowNet:   viper.GetStringSlice(allowNetConfigKey),
		AllowEnv:   viper.GetStringSlice(allowEnvConfigKey),
		AllowRun:   viper.GetStringSlice(allowRunConfigKey),
	}

	if flags.Changed(allowAllFlagName) {
		opts.AllowAll, _ = flags.GetBool(allowAllFlagName)
	}

	if flags.Changed(allowReadFlagName) {
		opts.AllowRead, _ = flags.GetStringSlice(allowReadFlagName)
	}

	if flags.Changed(allowWriteFlagName) {
		opts.AllowWrite, _ = flags.GetStringSlice(allowWriteFlagName)
	}

	if flags.Changed(allowNetFlagName) {
		opts.AllowNet, _ = flags.GetStringSlice(allowNetFlagName)
	}

	if flags.Changed(allowEnvFlagName) {
		opts.AllowEnv, _ = flags.GetStringSlice(allowEnvFlagName)
	}

	if flags.Changed(allowRunFlagName) {
		opts.AllowRun, _ = flags.GetStringSlice(allowRunFlagName)
	}

	return opts
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// The script's exit code is passed through to the process boundary verbatim.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
