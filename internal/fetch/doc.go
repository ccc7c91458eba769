// Package fetch logs into the events site and exposes raw per-field text for
// each event detail page.
//
// The Fetcher interface is the page-fetch collaborator the pipeline consumes:
// it hands downstream code a Page mapping labeled field names to
// already-extracted text, so the normalization core never touches markup.
package fetch
