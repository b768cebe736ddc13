package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/rolodex/internal/seed"
)

func newInitCmd(a *app) *cobra.Command {
	var demo bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize rolodex storage",
		Long: `Create the configuration and data directories, then initialize the
storage backend. With --demo an empty contact book is filled with sample
contacts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				added := 0
				if demo && s.store.Len() == 0 {
					for _, d := range seed.Demo() {
						if _, err := s.store.Add(d); err != nil {
							return sysError(fmt.Errorf("seed demo contacts: %w", err))
						}
						added++
					}
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Rolodex initialized successfully")
				fmt.Fprintln(out, "  config: ", a.configDir)
				fmt.Fprintln(out, "  data:   ", s.dataDir)
				fmt.Fprintln(out, "  backend:", a.cfg.GetString(cfgKeyBackend))
				if added > 0 {
					fmt.Fprintf(out, "  added %d demo contacts\n", added)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&demo, "demo", false, "add sample contacts to an empty contact book")
	return cmd
}
