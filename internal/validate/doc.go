// Package validate gates cluster provisioning on configuration
// correctness: distribution version minimums, per-module version windows,
// dependent-cluster surfacing, and duplicate-property detection in rendered
// engine configuration.
//
// Checks that can only pass or fail return an error; checks that surface
// non-fatal anomalies return Findings with a severity and leave the
// decision to the caller.
package validate
