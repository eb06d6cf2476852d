package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ethertreasure-go/internal/config"
	"ethertreasure-go/internal/endpoint"
	"ethertreasure-go/internal/game"
	"ethertreasure-go/internal/render"
	"ethertreasure-go/internal/transport"
	"ethertreasure-go/internal/xlog"
)

const version = "1.0.0"

func main() {
	root := &cobra.Command{
		Use:   "ethertreasure-server",
		Short: "Raw-Ethernet treasure hunt server",
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		xlog.Fatal("%v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	xlog.Section(fmt.Sprintf("Treasure Hunt Server v%s", version))

	cfg, err := config.LoadServer()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.ObjectsDir, 0o700); err != nil {
		return fmt.Errorf("creating objects directory: %w", err)
	}

	tr, err := transport.Open(cfg.Interface)
	if err != nil {
		return err
	}
	defer tr.Close()

	state := game.NewState(rand.New(rand.NewSource(time.Now().UnixNano())))
	game.ResolveTreasureFiles(state, cfg.ObjectsDir)
	for i := 1; i <= game.TreasureCount; i++ {
		t, _ := state.Treasure(i)
		xlog.Info("treasure %d: (%d,%d) file=%s", i, t.Pos.X, t.Pos.Y, t.FileName)
	}

	srv := endpoint.NewServer(tr, cfg.ObjectsDir, state)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()
	go srv.RenderLoop(ctx, func(s string) { fmt.Print(s) })

	fmt.Print(render.Grid(state, "TREASURE HUNT SERVER", true))

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		xlog.Warn("received signal: %v, shutting down", sig)
		cancel()
	}
	return nil
}
