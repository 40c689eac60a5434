// Package forall fans a unit of work out across selected projects.
//
// Executor runs one child process per project through a bounded worker pool,
// capturing each unit's combined output in full so that emission never
// interleaves bytes from two projects. A monotonic fail-fast flag stops new
// units from starting after the first failure while letting in-flight
// children finish. ReportRenderer emits the captured blocks in selection
// order, which keeps output deterministic regardless of completion order.
package forall
