// Package catalog holds the pure listing logic of the product catalog:
// which products a viewer may see, free-text title search over them, and
// the listing state consumed by clients.
//
// Nothing in this package performs I/O or mutates its inputs. Callers must
// always filter by viewer before searching; List enforces that order.
package catalog
