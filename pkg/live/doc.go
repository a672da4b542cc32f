// Package live bridges browsers to server-side routing over WebSocket.
//
// Each browser tab holds one Session. A Session is both the router.Location
// of that tab (the browser reports every hashchange) and its dom.Document
// (content written to a target is pushed to the browser as a JSON frame).
// A typical setup builds one engine per session:
//
//	srv := live.NewServer(func(ctx context.Context, s *live.Session) error {
//	    f := controller.New(controller.Config{Document: s, DefaultTarget: "#main"})
//	    e := router.New(router.WithLocation(s))
//	    e.Register("/", f.Controller(controller.Spec{Fragment: controller.URL("/fragments/home.html")}))
//	    e.Start(ctx)
//	    return nil
//	})
//	r := chi.NewRouter()
//	srv.Mount(r)
//
// # Protocol
//
// Frames are JSON text messages:
//
//	{"type":"hello","hash":"#/docs","targets":["#main"]}  // client, first frame
//	{"type":"hash","hash":"#/about"}                      // client, on hashchange
//	{"type":"content","target":"#main","html":"..."}      // server
//	{"type":"navigate","hash":"#/login"}                  // server
//	{"type":"reload"} {"type":"css"}                      // server, dev reload
//	{"type":"error","error":"..."}                        // server
package live
