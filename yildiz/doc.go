// Package yildiz is a client for the yildiz graph service: translations,
// nodes, edges, relation upserts, raw queries and path finding, all scoped
// to one tenant prefix.
//
// Each method is a single call through package transport. Creating returns
// the created entity and fails on anything but 201. Fetching, mutating or
// deleting by key returns (nil, nil) when the server answers 404, the
// document on 200, and an *UnexpectedStatusError otherwise. Queries fail with
// a *transport.StatusError on anything but 200.
//
//	client, err := yildiz.New(yildiz.Config{Prefix: "tenant-a", Port: 3058})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	node, err := client.GetNode(ctx, "123")
//	switch {
//	case err != nil:
//	    log.Fatal(err)
//	case node == nil:
//	    fmt.Println("no such node")
//	default:
//	    fmt.Println(node.Get("identifier").String())
//	}
package yildiz
