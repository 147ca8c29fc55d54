package main

import (
	"strings"

	"github.com/spf13/cobra"

	"policyinsight/internal/analysis"
)

func newAnalyzeCmd() *cobra.Command {
	var withEmbedding bool
	cmd := &cobra.Command{
		Use:   "analyze <text>",
		Short: "Analyze one feedback text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway(cmd.Context())
			if err != nil {
				return err
			}
			defer gw.Close()
			a := analysis.NewAnalyzer(gw, gw).Analyze(cmd.Context(), strings.Join(args, " "))
			if !withEmbedding {
				a.Embedding = nil
			}
			return printJSON(cmd, a)
		},
	}
	cmd.Flags().BoolVar(&withEmbedding, "embedding", false, "include the embedding vector")
	return cmd
}
