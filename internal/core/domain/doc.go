// Package domain holds vaultsync's core types: notes and chunks, the
// reconcile plan and report, search results, settings and scheduler
// state.
//
// The package sits at the centre of the hexagonal layout and imports
// nothing but the standard library. Services, ports and adapters all
// depend on it; it depends on none of them. That is what keeps the
// chunking and planning logic testable without any backend wired up.
package domain
