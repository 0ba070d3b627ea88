// Package gen
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Schema-driven source generation for hioload-core option groups.
//
// A YAML schema declares named option groups; the Go backend renders one
// source file per group that registers the group's typed options against an
// options.Registry. Every generated file embeds an xxhash fingerprint of
// the schema it was produced from, so stale output is detectable without
// re-rendering.
package gen
