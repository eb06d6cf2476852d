package main

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ethertreasure-go/internal/config"
	"ethertreasure-go/internal/endpoint"
	"ethertreasure-go/internal/protocol"
	"ethertreasure-go/internal/render"
	"ethertreasure-go/internal/transport"
	"ethertreasure-go/internal/xlog"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "ethertreasure-client",
		Short: "Raw-Ethernet treasure hunt client",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		xlog.Fatal("%v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	xlog.Section(fmt.Sprintf("Treasure Hunt Client v%s", version))

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}

	serverMAC, err := net.ParseMAC(cfg.ServerMAC)
	if err != nil {
		return fmt.Errorf("parsing ETHTREASURE_SERVER_MAC: %w", err)
	}

	if err := os.MkdirAll(cfg.ReceivedDir, 0o777); err != nil {
		return fmt.Errorf("creating received-files directory: %w", err)
	}

	tr, err := transport.Open(cfg.Interface)
	if err != nil {
		return err
	}
	defer tr.Close()

	cl := endpoint.NewClient(tr, serverMAC, cfg.ReceivedDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	runErrCh := make(chan error, 1)
	go func() { runErrCh <- cl.Run(ctx) }()
	go cl.RenderLoop(ctx, func(s string) { fmt.Print(s) })

	fmt.Print(render.ClientGrid(cl.State(), "TREASURE HUNT CLIENT"))
	fmt.Println("Commands: w=up s=down a=left d=right q=quit")

	inputDone := make(chan struct{})
	go readCommands(cl, inputDone)

	select {
	case err := <-runErrCh:
		return err
	case <-inputDone:
		cancel()
	case sig := <-sigCh:
		xlog.Warn("received signal: %v, shutting down", sig)
		cancel()
	}
	return nil
}

func readCommands(cl *endpoint.Client, done chan<- struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		var dir protocol.FrameType
		switch cmd {
		case "w":
			dir = protocol.TypeMoveUp
		case "s":
			dir = protocol.TypeMoveDown
		case "a":
			dir = protocol.TypeMoveLeft
		case "d":
			dir = protocol.TypeMoveRight
		case "q":
			return
		default:
			fmt.Println("unrecognized command, use w/s/a/d/q")
			continue
		}

		if err := cl.Move(dir); err != nil {
			xlog.Warn("move rejected: %v", err)
		}
	}
}
