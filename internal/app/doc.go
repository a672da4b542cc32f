// Package app assembles an erebus site from its configuration.
//
// An App owns one fetch client, one live server and the HTTP routes that
// serve the page shell, the static directory, the browser client and the
// metrics endpoint. Every browser that connects gets its own router engine
// and controller factory bound to the session, so navigation state is never
// shared between tabs:
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    return err
//	}
//	a, err := app.New(cfg, app.Options{})
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx)
//
// When hot reload is enabled, a file watcher re-serves open pages on
// fragment changes and reloads them when the configuration changes.
package app
