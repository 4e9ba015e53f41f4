// Package config loads the client and server configuration.
//
// A configuration file is either TOML (".toml") or a Java-style properties
// file (any other extension). Keys are dotted and prefixed with the
// application name, for example "client.serverPort" or, in TOML,
// serverPort inside a [client] table. Environment variables named
// PROPSHIP_<APP>_<KEY> in upper case override file values, and explicit
// overrides (command-line flags) override both.
package config
