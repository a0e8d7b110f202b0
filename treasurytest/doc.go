/*
Package treasurytest provides helpers for testing the treasury extensions.

Nothing in this package should be used by production code.
*/
package treasurytest
