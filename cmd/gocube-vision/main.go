// gocube-vision - CLI application for reading and solving Rubik's Cubes from photographs.
package main

import (
	"github.com/SeamusWaldron/gocube_vision/internal/cli"
)

func main() {
	cli.Execute()
}
