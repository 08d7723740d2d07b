// Package project provides the operational domain of a trade contractor.
//
// Projects are the unit of billing. Everything recorded on a site hangs off a project:
//   - TimeEntry: hours an employee worked on a given day, optionally at an overriding rate
//   - MaterialUsage: material consumed, with a stored or derived cost
//   - Report: a narrative site report
//
// Employees carry the default hourly rate used when a time entry does not specify one.
// All records are tenant-scoped; the tenant id is set once on creation and never changes.
package project
