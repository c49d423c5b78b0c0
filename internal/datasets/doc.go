// Package datasets stores chart dataset definitions in SQLite.
//
// Definitions with no building are defaults shared by every building. A
// building-specific definition replaces the default with the same sensor
// code; deleting it restores the default.
package datasets
