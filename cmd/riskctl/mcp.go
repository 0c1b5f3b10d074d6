package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heart-failure-risk-portal/internal/setup"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Register the MCP server with a desktop MCP client",
	}
	cmd.PersistentFlags().String("desktop-config", "", "Desktop client config file (default: platform location)")

	install := &cobra.Command{
		Use:   "install",
		Short: "Add or update the " + setup.ServerName + " entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desktop, _ := cmd.Flags().GetString("desktop-config")
			binary, _ := cmd.Flags().GetString("binary")
			configFile, _ := cmd.Flags().GetString("config")

			written, err := setup.Configure(setup.Options{
				DesktopConfigPath: desktop,
				BinaryPath:        binary,
				ConfigFile:        configFile,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s in %s\n", setup.ServerName, written)
			return nil
		},
	}
	install.Flags().String("binary", "", "Path to the "+setup.BinaryName+" executable (default: search PATH and common locations)")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the MCP server is registered and runnable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			desktop, _ := cmd.Flags().GetString("desktop-config")
			st, err := setup.GetStatus(setup.Options{DesktopConfigPath: desktop})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "desktop config: %s\n", st.DesktopConfigPath)
			fmt.Fprintf(out, "registered:     %t\n", st.Configured)
			if st.Configured {
				fmt.Fprintf(out, "binary:         %s\n", st.ServerPath)
				fmt.Fprintf(out, "config file:    %s\n", st.ConfigFile)
			}
			for _, issue := range st.Issues {
				fmt.Fprintf(out, "issue:          %s\n", issue)
			}
			if len(st.Issues) > 0 {
				return fmt.Errorf("%d setup issue(s) found", len(st.Issues))
			}
			return nil
		},
	}

	cmd.AddCommand(install, status)
	return cmd
}
