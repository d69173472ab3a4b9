// Command corscheck verifies that a cross-origin dependency grants CORS access
// to a site's origin, either by probing it directly or by loading the page in
// a browser.
package main

import "github.com/pohxiang0219/Hiredly-Web-Crawler/cmd"

// execute runs the CLI; tests swap it out.
var execute = cmd.Execute

func main() {
	execute()
}
