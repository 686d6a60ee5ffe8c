// Package scheduler runs daily jobs from a single dispatch loop.
//
// Jobs are passed explicitly to New. At most one job body runs at a time;
// jobs that become due together run one after another in next-run order.
// A job's error or panic is reported to listeners and never stops the loop.
package scheduler
