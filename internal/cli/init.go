package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkage/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and the trajectory store",
		Long:  "Create the configuration and data directories, write a default config.yaml,\nand initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.withStore(func(types.Store) error { return nil })
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: %s\n", filepath.Join(a.configDir, configFileExt))
			fmt.Fprintf(out, "data:   %s\n", a.dataDir)
			fmt.Fprintln(out, "Linkage store initialized successfully")
			return nil
		},
	}
}
