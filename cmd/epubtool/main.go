// Command epubtool inspects, extracts and repacks EPUB publications.
package main

import "os"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
