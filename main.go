// =============================================================================
// Sales Aggregator - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesagg process   - Clean the branch exports and write the totals
//   salesagg validate  - Check the configuration and inputs without writing
//   salesagg version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Loading, cleaning, aggregation and persistence
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-aggregator/cmd"
)

func main() {
	cmd.Execute()
}
