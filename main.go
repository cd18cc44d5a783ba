// The main package for the setlist-crawler executable.
package main

import (
	"github.com/liveatlas/setlist-crawler/cmd"
)

func main() {
	cmd.Execute()
}
