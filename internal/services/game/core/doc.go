// Package core provides generic primitives shared by the game service.
//
// The filter subpackage evaluates AIP-style filter expressions against
// recorded session action events.
package core
