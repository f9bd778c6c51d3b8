// Package internal is the core of the portal: the Application, its route
// table and the request dispatcher.
//
// # Application
//
// An Application owns the configuration, the database handle, the renderer,
// the translator, the session store and the route table. Boot builds the
// process-wide instance once; New builds an independent one for tests and
// tooling:
//
//	app, err := internal.Boot(root,
//	    internal.WithControllers(controllers.Registry()),
//	    internal.WithTemplatesFS(web.Templates()),
//	)
//
// Construction errors are joined with ErrConfig, ErrConnection or ErrTemplates.
// ResetForTesting shuts the singleton down and forgets it.
//
// # Dispatching
//
// HandleRequest looks the request path up in the route table, builds the
// controller registered under the route's controller id and runs the named
// action. It never returns nil: unknown paths render errors/404, errors render
// the error page for their status and panics are recovered into a 500.
//
//	resp := app.HandleRequest(httpx.NewRequest(http.MethodGet, "/about"))
//	fmt.Println(resp.Status, resp.Body)
//
// # Serving
//
// Handler wraps the dispatcher with the request id, recover, timeout, session
// and language middleware and adds /health/live, /health/ready and /assets/*.
// Run serves it with graceful shutdown.
package internal
