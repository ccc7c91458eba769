// Package parse converts raw scraped field text into typed values.
//
// Every parser is a pure function returning the parsed value plus an ok flag.
// Malformed input never panics and never returns an error; it reports ok=false,
// so one bad field never drops an otherwise valid record during a batch run.
package parse
