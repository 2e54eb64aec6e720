package main

import (
	"errors"
	"os"

	"github.com/tkingovr/postfilter/cmd/postfilter/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		var ee *cli.ExitError
		if errors.As(err, &ee) {
			os.Exit(ee.Code)
		}
		os.Exit(1)
	}
}
