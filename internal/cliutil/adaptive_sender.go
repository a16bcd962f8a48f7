// Package cliutil holds the thin argument-parsing shared by the three
// adaptive-congestion sender commands (cmd/sender-reno, cmd/sender-cubic,
// cmd/sender-bbr), which differ from each other only in which
// congestion.Controller they select — mirroring how the original course
// assignment split each controller into its own server script sharing one
// client.
package cliutil

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/YaoZengzeng/reliudp/internal/session"
)

const inputFile = "data.txt"

// RunAdaptiveSender parses `<host> <port>` from os.Args and runs a sender
// session in the given adaptive mode (Reno, CUBIC or BBR — never Fixed,
// which takes the extra sws argument handled by cmd/sender instead).
func RunAdaptiveSender(mode session.Mode) {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <host> <port>\n", os.Args[0])
		os.Exit(1)
	}

	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil {
		logrus.WithError(err).Fatal("invalid port")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = session.RunSender(ctx, session.SenderConfig{
		Host:      host,
		Port:      port,
		Mode:      mode,
		InputFile: inputFile,
		Metrics:   StartMetricsServer(),
	})
	if err != nil {
		logrus.WithError(err).Error("transfer failed")
		os.Exit(1)
	}
}
