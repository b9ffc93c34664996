// Command cdfinfo imports a netCDF dataset and prints its structural type.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
