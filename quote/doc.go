// Package quote turns the plain text of a dealer price quote into a
// structured record.
//
// The pipeline is Normalize -> Classify -> Extract -> Assemble. Every step is
// a pure function over strings, so Analyze may be called from any number of
// goroutines without coordination. Fields that cannot be found or parsed are
// left nil in the record and reported as a Drop; extraction itself never
// fails.
package quote
