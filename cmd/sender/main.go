// Command sender implements the fixed-window baseline sender: it reads
// os.Args directly rather than pulling in a flags package for three plain
// positional arguments.
//
// Usage: sender <host> <port> <sws>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/reliudp/internal/cliutil"
	"github.com/YaoZengzeng/reliudp/internal/session"
)

// inputFile is the fixed name of the source file this sender transmits;
// the CLI surface carries no filename argument.
const inputFile = "data.txt"

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <host> <port> <sws>\n", os.Args[0])
		os.Exit(1)
	}

	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		logrus.WithError(err).Fatal("invalid port")
	}
	sws, err := strconv.Atoi(os.Args[3])
	if err != nil {
		logrus.WithError(err).Fatal("invalid sws")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = session.RunSender(ctx, session.SenderConfig{
		Host:      host,
		Port:      port,
		Mode:      session.ModeFixed,
		SWS:       sws,
		InputFile: inputFile,
		Metrics:   cliutil.StartMetricsServer(),
	})
	if err != nil {
		logrus.WithError(err).Error("transfer failed")
		os.Exit(1)
	}
}
