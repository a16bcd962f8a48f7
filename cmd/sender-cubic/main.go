// Command sender-cubic runs a sender session using the CUBIC congestion
// controller.
//
// Usage: sender-cubic <host> <port>
package main

import (
	"github.com/YaoZengzeng/reliudp/internal/cliutil"
	"github.com/YaoZengzeng/reliudp/internal/session"
)

func main() {
	cliutil.RunAdaptiveSender(session.ModeCubic)
}
