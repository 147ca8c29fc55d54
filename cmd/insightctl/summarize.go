package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"policyinsight/internal/narrative"
)

func newSummarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file|->",
		Short: "Summarize feedback texts, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, err := readLines(cmd, args[0])
			if err != nil {
				return err
			}
			gw, err := newGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), narrative.NewWriter(gw).Summarize(cmd.Context(), texts))
			return err
		},
	}
}
