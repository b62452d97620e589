package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"livestage/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check directories and external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			checks := preflight.RunAll(cfg)
			checkRows := make([][]string, 0, len(checks))
			failures := 0
			for _, check := range checks {
				status := "ok"
				if !check.Passed {
					status = "FAIL"
					failures++
				}
				checkRows = append(checkRows, []string{check.Name, status, check.Detail})
			}
			fmt.Fprintln(out, renderListTable([]string{"Check", "Status", "Detail"}, checkRows))

			binaries := preflight.CheckSystemDeps(cfg)
			binaryRows := make([][]string, 0, len(binaries))
			for _, binary := range binaries {
				status := "ok"
				if !binary.Available {
					status = "missing"
					if binary.Optional {
						status = "missing (optional)"
					} else {
						failures++
					}
				}
				binaryRows = append(binaryRows, []string{binary.Name, binary.Command, status, binary.Description})
			}
			fmt.Fprintln(out, renderListTable([]string{"Binary", "Command", "Status", "Purpose"}, binaryRows))

			if failures > 0 {
				return fmt.Errorf("%d checks failed", failures)
			}
			return nil
		},
	}
}
