// Package dom defines the document surface controllers write into.
//
// A Document resolves selectors to Targets; a Target receives HTML content.
// Loader fetches a fragment and commits it to a Target. The package ships an
// in-memory Document used by tests and by headless rendering, and a Loader
// backed by any Fetcher such as *fetch.Client.
//
// Selectors follow a small subset of CSS:
//
//	body        the document body
//	#main       the element whose id is "main"
//	.card       any selector registered with MemoryDocument.Register
package dom
