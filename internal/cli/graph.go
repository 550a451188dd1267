package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/yildizdb/yildiz-go/yildiz"
)

// docCall is a facade call already bound to its arguments.
type docCall func(ctx context.Context) (*yildiz.Document, error)

// runDoc wraps a facade call into a cobra RunE that prints the result.
func (a *app) runDoc(bind func(c *yildiz.Client, args []string) (docCall, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := a.connect()
		if err != nil {
			return err
		}
		call, err := bind(client, args)
		if err != nil {
			return err
		}
		doc, err := call(cmd.Context())
		if err != nil {
			return err
		}
		a.printDoc(doc)
		return nil
	}
}

func newTranslationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translation",
		Short: "Store, read and delete value translations",
	}

	var data string
	var ttld bool
	store := &cobra.Command{
		Use:   "store VALUE",
		Short: "Translate and store a value",
		Args:  cobra.ExactArgs(1),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			payload, err := parseObject("data", data)
			if err != nil {
				return nil, err
			}
			in := yildiz.TranslationInput{Value: parseValue(args[0]), Data: payload, TTLD: ttld}
			return func(ctx context.Context) (*yildiz.Document, error) {
				return c.StoreTranslation(ctx, in)
			}, nil
		}),
	}
	store.Flags().StringVar(&data, "data", "", "JSON data stored with the translation")
	store.Flags().BoolVar(&ttld, "ttld", false, "Delete after the server's TTL")

	cmd.AddCommand(store,
		&cobra.Command{
			Use:   "get ID",
			Short: "Show a translation",
			Args:  cobra.ExactArgs(1),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return c.GetTranslation(ctx, args[0])
				}, nil
			}),
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a translation",
			Args:  cobra.ExactArgs(1),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return c.DeleteTranslation(ctx, args[0])
				}, nil
			}),
		},
	)
	return cmd
}

func newNodeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Create, read and delete graph nodes",
	}

	var data, extend string
	var ttld bool
	create := &cobra.Command{
		Use:   "create IDENTIFIER",
		Short: "Create a node",
		Long:  "Create a node. A numeric IDENTIFIER is sent as a number, anything else as a string the server hashes.",
		Args:  cobra.ExactArgs(1),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			payload, err := parseObject("data", data)
			if err != nil {
				return nil, err
			}
			ext, err := parseObject("extend", extend)
			if err != nil {
				return nil, err
			}
			in := yildiz.NodeInput{Identifier: parseValue(args[0]), Data: payload, TTLD: ttld, Extend: ext}
			return func(ctx context.Context) (*yildiz.Document, error) {
				return c.CreateNode(ctx, in)
			}, nil
		}),
	}
	create.Flags().StringVar(&data, "data", "", "JSON data stored on the node")
	create.Flags().StringVar(&extend, "extend", "", "JSON object of extended columns")
	create.Flags().BoolVar(&ttld, "ttld", false, "Delete after the server's TTL")

	cmd.AddCommand(create,
		&cobra.Command{
			Use:   "get IDENTIFIER",
			Short: "Show a node",
			Args:  cobra.ExactArgs(1),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return c.GetNode(ctx, args[0])
				}, nil
			}),
		},
		&cobra.Command{
			Use:   "delete IDENTIFIER",
			Short: "Delete a node",
			Args:  cobra.ExactArgs(1),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return c.DeleteNode(ctx, args[0])
				}, nil
			}),
		},
	)
	return cmd
}

func newEdgeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Create, read, delete and list edges",
	}

	var relation string
	relationFlag := func(c *cobra.Command) *cobra.Command {
		c.Flags().StringVarP(&relation, "relation", "r", yildiz.DefaultRelation, "Edge relation")
		return c
	}

	var attributes, extend string
	var ttld bool
	create := relationFlag(&cobra.Command{
		Use:   "create LEFT_ID RIGHT_ID",
		Short: "Create an edge between two node ids",
		Args:  cobra.ExactArgs(2),
		RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
			attrs, err := parseObject("attributes", attributes)
			if err != nil {
				return nil, err
			}
			ext, err := parseObject("extend", extend)
			if err != nil {
				return nil, err
			}
			in := yildiz.EdgeInput{
				LeftID:     parseValue(args[0]),
				RightID:    parseValue(args[1]),
				Relation:   relation,
				Attributes: attrs,
				TTLD:       ttld,
				Extend:     ext,
			}
			return func(ctx context.Context) (*yildiz.Document, error) {
				return c.CreateEdge(ctx, in)
			}, nil
		}),
	})
	create.Flags().StringVar(&attributes, "attributes", "", "JSON attributes stored on the edge")
	create.Flags().StringVar(&extend, "extend", "", "JSON object of extended columns")
	create.Flags().BoolVar(&ttld, "ttld", false, "Delete after the server's TTL")

	byKey := func(use, short string, call func(c *yildiz.Client, ctx context.Context, left, right, relation string) (*yildiz.Document, error)) *cobra.Command {
		return relationFlag(&cobra.Command{
			Use:   use + " LEFT_ID RIGHT_ID",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return call(c, ctx, args[0], args[1], relation)
				}, nil
			}),
		})
	}

	depth := func(use, short string, call func(c *yildiz.Client, ctx context.Context, key yildiz.EdgeKey) (*yildiz.Document, error)) *cobra.Command {
		return relationFlag(&cobra.Command{
			Use:   use + " LEFT_ID RIGHT_ID",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				key := yildiz.EdgeKey{LeftID: parseValue(args[0]), RightID: parseValue(args[1]), Relation: relation}
				return func(ctx context.Context) (*yildiz.Document, error) {
					return call(c, ctx, key)
				}, nil
			}),
		})
	}

	side := func(use, short string, call func(c *yildiz.Client, ctx context.Context, id, relation string) (*yildiz.Document, error)) *cobra.Command {
		return relationFlag(&cobra.Command{
			Use:   use + " NODE_ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: a.runDoc(func(c *yildiz.Client, args []string) (docCall, error) {
				return func(ctx context.Context) (*yildiz.Document, error) {
					return call(c, ctx, args[0], relation)
				}, nil
			}),
		})
	}

	cmd.AddCommand(
		create,
		byKey("get", "Show an edge", (*yildiz.Client).GetEdge),
		byKey("delete", "Delete an edge", (*yildiz.Client).DeleteEdge),
		depth("increase", "Increase the depth of an edge", (*yildiz.Client).IncreaseEdgeDepth),
		depth("decrease", "Decrease the depth of an edge", (*yildiz.Client).DecreaseEdgeDepth),
		side("left", "List edges whose left node is NODE_ID", (*yildiz.Client).EdgesFromLeft),
		side("right", "List edges whose right node is NODE_ID", (*yildiz.Client).EdgesFromRight),
		side("both", "List edges touching NODE_ID on either side", (*yildiz.Client).EdgesForEither),
	)
	return cmd
}
