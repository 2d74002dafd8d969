// Package app wires fxboard together. An App is built once from the
// configuration and passed by reference to whatever needs the handler or the
// board store; there are no package-level singletons.
package app
