// Package record holds the normalized Event Record and the rules that build
// one from raw page text: ordered exclusion predicates, address resolution and
// cost reconciliation.
//
// A Record is created once per scraped detail page and never mutated during
// normalization; action markers change later, through the store, keyed by URL.
package record
