package httputil

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Port is the default listen port of the relay.
const Port = 8080

const httpAddressFlag = "http-address"

// NewHTTPCliFlags creates the listen address flag, defaulting to the given port.
func NewHTTPCliFlags(port int) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    httpAddressFlag,
			Value:   fmt.Sprintf("0.0.0.0:%d", port),
			Usage:   "address the relay listens on",
			EnvVars: []string{"HTTP_ADDRESS"},
		},
	}
}

// NewHTTPAddressFromContext reads the listen address flag.
func NewHTTPAddressFromContext(c *cli.Context) string {
	return c.String(httpAddressFlag)
}
