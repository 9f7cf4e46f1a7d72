// Package cook regenerates cooked content artifacts on demand.
//
// Developer builds frequently run against stale local artifacts; rather than
// failing loads, the pipeline asks the cooker to refresh an artifact right
// before reading it. The call is advisory: whatever the cooker returns, the
// load proceeds to its read and fails or succeeds on what is actually on
// disk.
//
// # Components
//
//   - Cooker: the interface loaders depend on. Disabled is the ship-build
//     implementation that refuses all work.
//   - Manager: rule registry (cooked extension -> source extension +
//     transform) with singleflight deduplication per artifact, so a burst of
//     loads touching one stale artifact cooks it once.
//   - Database: sqlite file (via gorm) remembering the source modification
//     time each artifact was cooked from, letting timestamp-checked requests
//     short-circuit with ResultUpToDate.
package cook
