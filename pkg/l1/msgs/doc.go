// Package msgs provides L1 protocol support and all message schemas.
package msgs

// L1 protocol carries decoded and scaled samples from the acquisition
// daemon to displays and recorders. Every message is wrapped in Typed
// and encoded with protobuf.
//
// Producer: scoped
// Consumer: displays, scopemon, scopecli
