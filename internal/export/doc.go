// Package export renders record collections to CSV. Alongside the primary
// file it writes one directory per categorical column with a file per
// distinct value, and one directory per travel column with a file per
// numeric range bucket. Bucket directories are rebuilt from scratch on every
// run so stale files never survive a rescrape.
package export
