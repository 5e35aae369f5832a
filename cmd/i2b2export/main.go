// Package main provides the i2b2export CLI application.
// i2b2export copies a stored i2b2 patient set into a SQLite file.
package main

import "github.com/mcw-ctsi/i2b2export/cmd"

func main() {
	cmd.Execute()
}
