// Package app wires configuration, logging, the registry, the store and
// the exporter into the operations the command line exposes.
package app
