package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kapheine/patchwatch/db"
	"github.com/spf13/cobra"
)

const dateFormat = "2006-01-02 15:04:05"

func newListCommand() *cobra.Command {
	var (
		flagQuery string
		flagOrder string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patches with author and state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := openClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			defer closeClient(client)

			var patches []*db.PatchSummary

			if err := client.Read(cmd.Context(), func(ctx context.Context, ops db.ReadOnly) error {
				patches, err = ops.ListPatches(ctx, flagQuery, db.PatchOrder(flagOrder))

				return err
			}); err != nil {
				return err
			}

			if len(patches) == 0 {
				fmt.Println("No patches found.")

				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

			fmt.Fprintln(w, "PATCH\tDATE\tAUTHOR\tSTATE")

			for _, patch := range patches {
				author := patch.AuthorName
				if author == "" {
					author = patch.AuthorMail
				}

				fmt.Fprintf(w, "%v\t%v\t%v\t%v\n", patch.Name, patch.Date.Format(dateFormat), author, patch.StateName)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&flagQuery, "query", "q", "", "only list patches whose name contains this substring")
	cmd.Flags().StringVarP(&flagOrder, "order", "o", string(db.OrderByDate), "ordering: date, name, author or state")

	return cmd
}
