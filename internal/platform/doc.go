// Package platform isolates operating-system differences: the shared-library
// naming of built FMU artifacts and Unix permission handling. The naming
// functions are pure and take the target GOOS explicitly so every platform
// can be tested from any host.
package platform
