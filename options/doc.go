// Package options
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed configuration options for hioload-core tools and services.
//
// Three option kinds are supported: single string values, ordered string
// lists, and unordered unique sets. Every option carries a name, a default,
// and a description, binds to a standard flag.FlagSet for command-line
// parsing, and publishes its current value into a control.ConfigStore
// snapshot. Option values are safe for concurrent read and update.
package options
