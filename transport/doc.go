// Package transport is the request executor behind the yildiz client.
//
// A Client turns a path, a verb, an optional body and an optional expected
// status code into exactly one HTTP call and normalizes the outcome:
//   - every request carries content-type: application/json, the tenant
//     header x-yildiz-prefix and, when configured, an authorization token
//   - non-string bodies are sent as JSON
//   - response bodies are decoded as JSON when possible, otherwise kept as text
//   - connections are pooled per Client unless reuse is disabled
//   - low-level timing phases are recorded when EnableTimings is set
//
// There are no retries. A call fails with a *TransportError when no response
// arrived (DNS, refused connection, timeout) and with a *StatusError when the
// response status differs from the one requested with Request.ExpectStatus.
//
// Basic Usage:
//
//	client, err := transport.New(transport.Config{
//	    Prefix: "tenant-a",
//	    Host:   "localhost",
//	    Port:   3058,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	req := transport.NewRequest("POST", "/node").
//	    WithBody(map[string]interface{}{"identifier": 42}).
//	    ExpectStatus(201)
//
//	resp, err := client.Do(context.Background(), req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Status: %d\n", resp.StatusCode)
//
// Thread Safety:
//
// Client is safe for concurrent use. Responses resolve in completion order;
// callers that need ordering must wait for each call before issuing the next.
package transport
