// Package audit keeps a change log of planner data.
//
// Every write that alters what a colo map shows is recorded: snapshot
// stores and deletions, catalog, rack, SKU and reservation replacements,
// and assignment events arriving over MQTT. Entries are append-only and
// listed newest first.
package audit
