// Package cli implements the rolodex command-line interface.
//
// Commands return errors tagged with an exit code: 1 for user errors
// (invalid input, unknown contact) and 2 for system errors (config,
// storage). Execute maps them to the process exit status.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/rolodex/internal/paths"
	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app is the state shared by one invocation of the root command.
type app struct {
	flags     rootFlags
	configDir string
	cfg       *viper.Viper
}

// NewRootCmd creates the top-level "rolodex" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "rolodex",
		Short: "A local contact book",
		Long: `Rolodex keeps a personal contact list on disk and lets you search,
sort, favorite and edit it from the command line.`,
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.loadConfig(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/"+paths.DefaultDataDirName+")")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newFavoriteCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "rolodex:", err)
	}
	os.Exit(exitCode(err))
}

// loadConfig resolves the config directory, reads config.yaml and applies
// the logging settings.
func (a *app) loadConfig(logOut io.Writer) error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysError(err)
	}
	if err := configureLogging(v, logOut); err != nil {
		return sysError(err)
	}
	a.configDir = dir
	a.cfg = v
	return nil
}

// resolveDataDir applies --data-dir > config.yaml data_dir >
// ROLODEX_DATA_DIR > $(CWD)/.rolodex-db.
func (a *app) resolveDataDir() (string, error) {
	return paths.ResolveDataDir(a.flags.dataDir, a.cfg.GetString(cfgKeyDataDir))
}

// cliError carries the exit code for a failed command.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userError(err error) error { return &cliError{code: exitUserError, err: err} }
func sysError(err error) error  { return &cliError{code: exitSysError, err: err} }

// classify tags store errors: validation and lookup failures are the
// user's, everything else is the system's.
func classify(err error) error {
	if errors.Is(err, types.ErrValidation) || errors.Is(err, types.ErrNotFound) {
		return userError(err)
	}
	return sysError(err)
}

// exitCode maps an error returned by the root command to an exit status.
// Errors without a tag come from cobra itself (bad flags, wrong argument
// count) and count as user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}
