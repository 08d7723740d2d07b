// Package billing provides the offer and invoice domain of the back office.
//
// This package implements the billing bounded context, which is responsible for:
//   - Offers: priced proposals to a client with their own status lifecycle
//   - Invoices: persisted, numbered billing documents derived from a calculation or an offer
//   - The invoice calculation: turning time entries, material usage, reports and accepted
//     offers into itemized totals with the labor-cost share disclosed per line
//
// Key Aggregates:
//   - Offer: owns its line items as a value-type list
//   - Invoice: owns its line items as a value-type list
//
// Value Objects:
//   - LineItem / LineItems: one priced position with optional cost breakdown
//   - CalculationResult: the unpersisted output of Calculate
//
// Calculate is a pure function over already-fetched project data. Loading the data and
// enforcing tenant ownership is the application layer's job.
package billing
