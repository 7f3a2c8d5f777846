// Package commands defines the pixuli CLI.
//
// Commands
//
//   - probe    Call plus_100 in a loaded plugin
//   - verify   Run the boundary checks against a plugin
//   - list     List loaded plugins
//   - schema   Print the manifest JSON Schema
//   - native   Compute plus_100 in-process, without Wasm
//
// # Implementation
//
// Commands that need Wasm load configuration, build the logger, open a
// host.Host over the configured plugin paths and close it when they return.
// native and schema never read configuration.
package commands
