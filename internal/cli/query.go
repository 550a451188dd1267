package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizdb/yildiz-go/yildiz"
)

func newUpsertCmd(a *app) *cobra.Command {
	var (
		relation      string
		leftData      string
		rightData     string
		edgeData      string
		ttld          bool
		increaseDepth bool
		popularRight  bool
		noTransaction bool
		edgeTime      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "upsert LEFT RIGHT",
		Short: "Create both nodes and the edge between them if missing",
		Long: `Upsert a relation between two node values. Nodes are created when
missing; the edge is created, or its depth increased with --increase-depth.`,
		Args: cobra.ExactArgs(2),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			in := yildiz.NewRelation(parseValue(args[0]), parseValue(args[1]))
			in.Relation = relation
			in.TTLD = ttld
			in.IsPopularRightNode = popularRight
			in.DepthBeforeCreation = !increaseDepth

			var err error
			if in.LeftNodeData, err = parseObject("left-data", leftData); err != nil {
				return nil, err
			}
			if in.RightNodeData, err = parseObject("right-data", rightData); err != nil {
				return nil, err
			}
			if in.EdgeData, err = parseObject("edge-data", edgeData); err != nil {
				return nil, err
			}
			if edgeTime > 0 {
				in.EdgeTime = time.Now().Add(-edgeTime).UnixMilli()
			}

			upsert := c.UpsertRelation
			if noTransaction {
				upsert = c.UpsertRelationNoTransaction
			}
			return func(ctx context.Context) (*yildiz.Document, error) {
				return upsert(ctx, in)
			}, nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVarP(&relation, "relation", "r", yildiz.DefaultRelation, "Edge relation")
	flags.StringVar(&leftData, "left-data", "", "JSON data for the left node")
	flags.StringVar(&rightData, "right-data", "", "JSON data for the right node")
	flags.StringVar(&edgeData, "edge-data", "", "JSON data for the edge")
	flags.BoolVar(&ttld, "ttld", false, "Delete after the server's TTL")
	flags.BoolVar(&increaseDepth, "increase-depth", false, "Increase the depth of an existing edge instead of creating another")
	flags.BoolVar(&popularRight, "popular-right", false, "Hint that the right node is used extensively")
	flags.BoolVar(&noTransaction, "no-transaction", false, "Use the non-transactional upsert")
	flags.DurationVar(&edgeTime, "edge-age", 0, "Age of the event behind the edge (default now)")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var spread bool
	var replacements string

	cmd := &cobra.Command{
		Use:   "query SQL",
		Short: "Run a raw query against the tenant's tables",
		Args:  cobra.ExactArgs(1),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			repl, err := parseObject("replacements", replacements)
			if err != nil {
				return nil, err
			}
			query := c.RawQuery
			if spread {
				query = c.RawSpread
			}
			return func(ctx context.Context) (*yildiz.Document, error) {
				return query(ctx, args[0], repl)
			}, nil
		}),
	}
	cmd.Flags().BoolVar(&spread, "spread", false, "Spread the query across the tenant's tables")
	cmd.Flags().StringVar(&replacements, "replacements", "", "JSON object of named replacements")
	return cmd
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path START END",
		Short: "Find the shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			start, end := parseValue(args[0]), parseValue(args[1])
			return func(ctx context.Context) (*yildiz.Document, error) {
				return c.ShortestPath(ctx, start, end)
			}, nil
		}),
	}
}

func newEdgeInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edge-info VALUE...",
		Short: "Resolve node values and show their edges",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			return func(ctx context.Context) (*yildiz.Document, error) {
				values := make([]interface{}, len(args))
				for i, arg := range args {
					values[i] = parseValue(arg)
				}
				return c.TranslatedEdgeInfo(ctx, values)
			}, nil
		}),
	}
}
