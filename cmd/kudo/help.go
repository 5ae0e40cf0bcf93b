// ABOUTME: Help display for the kudo CLI with grouped flags and examples.
// ABOUTME: Provides printHelp for usage output and sessionStatus for login detection.
package main

import (
	"fmt"
	"io"
)

// printHelp writes a formatted help message to w.
func printHelp(w io.Writer, ver string) {
	fmt.Fprintf(w, "kudo %s — group greeting boards from the terminal\n", ver)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  kudo [flags] <board-slug>        open a board in the terminal UI")
	fmt.Fprintln(w, "  kudo -web [flags]                serve the local web UI")
	fmt.Fprintln(w, "  kudo -export yaml <board-slug>   export a board to stdout")
	fmt.Fprintln(w, "  kudo -login                      sign in and save the session")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Modes:")
	fmt.Fprintln(w, "  -web              start the local web server")
	fmt.Fprintln(w, "  -export FORMAT    export a board: yaml or markdown")
	fmt.Fprintln(w, "  -login            sign in with email and password")
	fmt.Fprintln(w, "  -logout           forget the saved session")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -api-url URL      backend base URL (default: KUDO_API_URL or http://127.0.0.1:3000)")
	fmt.Fprintln(w, "  -bind ADDR        web listen address (default: 127.0.0.1:8467)")
	fmt.Fprintln(w, "  -data-dir DIR     local state directory (default: $XDG_DATA_HOME/kudo)")
	fmt.Fprintln(w, "  -anonymous        ignore the saved session for this run")
	fmt.Fprintln(w, "  -verbose          verbose output")
	fmt.Fprintln(w, "  -version          print version and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  kudo farewell-sam")
	fmt.Fprintln(w, "  kudo -web")
	fmt.Fprintln(w, "  kudo -export markdown farewell-sam > board.md")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  KUDO_API_URL, KUDO_BIND, KUDO_ALLOW_REMOTE, KUDO_AUTHOR, KUDO_DATA_DIR")
	fmt.Fprintln(w, "  KUDO_EMAIL, KUDO_PASSWORD (for -login)")
}
