// Package runtime simulates actor instances under a projected controller.
//
// An instance carries its program counter, persistent variables and port
// FIFOs. Each Step asks the controller for a decision and either fires the
// chosen transition or stalls.
package runtime
