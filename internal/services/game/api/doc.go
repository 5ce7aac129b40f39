// Package api contains the game service API implementations.
//
// API handlers are organized by transport. The http subpackage exposes the
// JSON REST surface for sessions, phases, actions, scenario briefings,
// event logs, reports, and the story/component catalog.
package api
