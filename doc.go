// Package fsm is the root of a small system for finite-state
// machines that can undo and redo their transitions.
//
// The core code is in package 'core'.  Package 'crew' hosts many
// machines behind a JSON protocol, and some command-line tools are
// in 'cmd'.
package fsm
