// Package benchmark runs the analytics operations concurrently and measures them.
//
// Every run creates its own bounded Pool and tears it down before returning, so no worker outlives
// the call that started it. Task failures, including panics, are captured per task as an Outcome and
// never abort the rest of a run.
//
// Three protocols are offered:
//
//   - RunMixedBatch submits each of the six aggregations once and reports their outcomes by operation name.
//   - RunThroughputSweep submits the monthly trends aggregation many times and samples host CPU and memory.
//   - RunScalingCurveSweep repeats the reader activity aggregation once per worker for a sequence of pool sizes.
package benchmark
