// Package msgs defines the L1 wire envelope and the generic replies.
//
// Every message crossing the wire is wrapped in a Typed envelope carrying a
// 32-bit type ID: bit 31 is the kind (command or event), bits 16-30 the
// group, bit 15 marks replies and the low bits number the message in its
// group. Device packages register their messages in MessageTypes.
package msgs
