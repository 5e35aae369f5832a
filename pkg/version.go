// Package i2b2export exports a stored i2b2 patient-set query into a
// self-contained SQLite file.
package i2b2export

var (
	// Version of the application. It is set during the build.
	Version = "v0.1.0"
	// Build timestamp. It is set during the build.
	Build = "n/a"
)
