// main - main entry-point to epaye-go commands through cobra
// individual commands are outlined in ./cmd/
package main

import (
	"github.com/tax-intl/epaye-go/cmd"
	"github.com/tax-intl/epaye-go/libs/logging"

	// pull in the filing gateway service
	_ "github.com/tax-intl/epaye-go/services/submission/cmd"
)

var (
	// variables will be overwritten at build time
	version   string
	commit    string
	buildTime string
)

func main() {
	defer func() {
		if logging.Writer != nil {
			logging.Writer.Close()
		}
	}()
	cmd.Execute(version, commit, buildTime)
}
