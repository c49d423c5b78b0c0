// Package chartconfig assembles per-building chart configurations.
//
// An Assembler joins a building's processed time series (from a
// SeriesSource, normally the chartdata.Cache) with its dataset definitions
// (DatasetProvider) and the y-axis definitions (AxisProvider). Each dataset
// is bound to a series by its sensor code:
//
//	"electrical_demand"  ->  Categories["electrical"].Demand
//	"water_usage"        ->  Categories["water"].Usage
//	"temperature"        ->  Temperature
//
// The result is cached per building for a TTL (14 minutes by default).
// Expired configurations are rebuilt from the still-cached series, so only
// the dataset definitions are re-read.
package chartconfig
