package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/duantianjun/qtshut/internal/app"
	"github.com/duantianjun/qtshut/internal/timeparse"
)

func main() {
	var (
		cfgPath  string
		simulate bool
	)
	flag.StringVar(&cfgPath, "config", "./config.json", "path to config file (json or yaml)")
	flag.BoolVar(&simulate, "simulate", false, "dry run: log instead of powering off")
	flag.Usage = usage
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath, simulate)
	if err != nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}

	if err := a.Start(ctx); err != nil {
		fmt.Println("fatal start:", err)
		os.Exit(1)
	}

	if expr := strings.Join(flag.Args(), " "); strings.TrimSpace(expr) != "" {
		if err := schedule(ctx, a, expr); err != nil {
			fmt.Println("error:", err)
			_ = a.Stop(context.Background())
			os.Exit(1)
		}
	}

	<-ctx.Done()
	_ = a.Stop(context.Background())
}

func schedule(ctx context.Context, a *app.App, expr string) error {
	in, err := a.Resolver().Resolve(expr)
	if err != nil {
		if errors.Is(err, timeparse.ErrUnrecognized) {
			printExamples()
		}
		return err
	}
	target, err := a.Schedule(ctx, in)
	if err != nil {
		return err
	}
	now := time.Now()
	fmt.Printf("已安排关机: %s (%s)\n",
		a.Resolver().FormatInput(in, now),
		timeparse.FormatClock(target.Sub(now)),
	)
	return nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [time expression]\n\n", os.Args[0])
	flag.PrintDefaults()
	fmt.Fprintln(flag.CommandLine.Output())
	printExamples()
}

func printExamples() {
	fmt.Println("支持的时间表达式:")
	for _, ex := range timeparse.Examples() {
		fmt.Printf("  %-12s %s\n", ex[0], ex[1])
	}
}
