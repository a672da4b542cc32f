// Package errors provides the structured error values used across erebus.
//
// Every failure surfaced by the router, the controller layer and the
// collaborators carries a stable dotted code:
//
//	erebus.route.no_handler
//	erebus.route.no_matching_route_or_default
//	erebus.controller.handler_error
//	erebus.http.connection_refused
//
// Codes map to a registered template holding the category and a short
// message. Errors compare equal under errors.Is when their codes match, so
// callers can test against the package-level sentinels exported by the
// router and controller packages.
//
// # Usage
//
//	err := errors.New(errors.CodeNoHandler).
//	    WithDetail("pattern quickstart").
//	    WithSuggestion("Pass a handler to Register")
//
//	fmt.Print(err.Format())
package errors
