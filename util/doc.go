// Package util holds the small generic helpers shared across streamkit
// packages: map and slice lookups plus zero-value fallbacks.
package util
