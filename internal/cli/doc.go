// Package cli implements the command-line interface for ea-events.
//
// Three subcommands cover the pipeline: scrape logs in, normalizes every
// upcoming event into the store and regenerates the CSV outputs; mark flags
// a stored event for an action; actions evaluates the candidate sets and
// commits the ones the user confirms.
package cli
