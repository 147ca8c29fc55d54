package main

import (
	"github.com/spf13/cobra"

	"policyinsight/internal/cluster"
	"policyinsight/internal/narrative"
	"policyinsight/internal/types"
)

type clusterOutput struct {
	Clusters  []types.Cluster `json:"clusters"`
	Narrative string          `json:"narrative,omitempty"`
}

func newClusterCmd() *cobra.Command {
	var (
		k       int
		narrate bool
	)
	cmd := &cobra.Command{
		Use:   "cluster <file|->",
		Short: "Cluster feedback texts, one per line",
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

			out := clusterOutput{Clusters: cluster.NewEngine(gw).Cluster(cmd.Context(), texts, k)}
			if narrate {
				described := make([]types.NarrativeCluster, 0, len(out.Clusters))
				for _, c := range out.Clusters {
					described = append(described, types.NarrativeCluster{Name: c.Name, Description: c.Description})
				}
				out.Narrative = narrative.NewWriter(gw).Narrate(cmd.Context(), described, len(texts))
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", cluster.DefaultK, "number of clusters")
	cmd.Flags().BoolVar(&narrate, "narrate", false, "add a narrative over the clusters")
	return cmd
}
