// Command sender-reno runs a sender session using the NewReno-style
// congestion controller.
//
// Usage: sender-reno <host> <port>
package main

import (
	"github.com/YaoZengzeng/reliudp/internal/cliutil"
	"github.com/YaoZengzeng/reliudp/internal/session"
)

func main() {
	cliutil.RunAdaptiveSender(session.ModeReno)
}
