// Package main starts the padglass overlay controller.
package main

import "flag"

// main is the entrypoint for the padglass overlay controller.
func main() {
	noTray := flag.Bool("no-tray", false, "Disable the system tray icon")
	flag.Parse()

	if err := run(*noTray); err != nil {
		logFatal(err)
	}
}
