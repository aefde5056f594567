// Package chainreact provides a client for the ChainReact workflow-automation API.
//
// The package covers workflows (CRUD and execution), webhook subscriptions and
// usage analytics. Every operation is a single blocking request/response exchange
// over an authenticated Transport.
//
// # Architecture
//
// The package is organized into several components:
//
//   - Config: API key and base URL, validated once when the client is built
//   - Transport: performs one authenticated HTTP request and normalizes failures
//   - Services: Workflows, Webhooks and Analytics map typed requests to JSON and back
//   - Errors: a single *Error type tagged as an HTTP or a network failure
//
// # Usage
//
//	client, err := chainreact.NewClient(chainreact.Config{
//		APIKey: os.Getenv("CHAINREACT_API_KEY"),
//	}, chainreact.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	page, err := client.Workflows.List(ctx, chainreact.ListOptions{Page: 1, Limit: 10})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	execID, err := client.Workflows.Execute(ctx, page.Data[0].ID, map[string]any{"x": 1})
//
// # Partial updates
//
// Update requests are explicit patches. A Field left at its zero value is not
// sent, Null sends a JSON null and Set sends the value:
//
//	wf, err := client.Workflows.Update(ctx, id, chainreact.WorkflowUpdate{
//		Name:        chainreact.Set("Renamed"),
//		Description: chainreact.Null[string](),
//	})
//
// # Error Handling
//
// Failures coming out of the request pipeline are *Error values:
//
//	var apiErr *chainreact.Error
//	if errors.As(err, &apiErr) {
//		if apiErr.HasStatus() {
//			// the server answered with apiErr.StatusCode
//		} else {
//			// no usable response: connection refused, DNS, timeout...
//		}
//	}
//
// Requests rejected locally before any I/O wrap ErrInvalidRequest instead.
package chainreact
