// Command sender-bbr runs a sender session using the BBR-style congestion
// controller.
//
// Usage: sender-bbr <host> <port>
package main

import (
	"github.com/YaoZengzeng/reliudp/internal/cliutil"
	"github.com/YaoZengzeng/reliudp/internal/session"
)

func main() {
	cliutil.RunAdaptiveSender(session.ModeBBR)
}
