package clientdist

import _ "embed"

// ErebusJS is the browser client of the live bridge.
//
// It is served by pkg/live at "/_erebus/client.js".
//
//go:embed erebus.js
var ErebusJS []byte
