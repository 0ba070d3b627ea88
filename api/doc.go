// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Contract layer of hioload-core. Declares the pooling, control, transport
// and shutdown interfaces implemented elsewhere in the library. The package
// carries no implementation code so that consumers can depend on contracts
// without pulling in platform-specific allocators.
package api
