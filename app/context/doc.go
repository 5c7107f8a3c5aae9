// Package context defines the shared application context passed to every CLI
// command: the filesystem, process environment, logger, database handle,
// configuration, standard streams, and clock. It is a separate package only
// to break the import cycle between the app and cli packages.
package context
