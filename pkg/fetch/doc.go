// Package fetch is the HTTP collaborator used to load fragments and data.
//
// A Client issues requests and classifies failures with stable codes:
//
//	erebus.http.null_url            empty URL
//	erebus.http.connection_refused  transport failure
//	erebus.http.error               non-200 status (see StatusError)
//	erebus.http.json_parse_error    JSON body that does not parse
//
// Responses with an application/json content type are decoded; every other
// body is returned as text. Relative URLs resolve against the base URL, and
// besides http and https the client reads file:// URLs from a local root and
// s3://bucket/key URLs through an S3 client.
package fetch
