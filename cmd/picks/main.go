// Command picks prints the latest daily picks and pool bankrolls from a
// running TipFusion instance.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("TIPFUSION_ADDR", "http://localhost:8080"), "TipFusion base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	withBankroll := flag.Bool("bankroll", true, "also print pool bankrolls")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	api := newAPI(*addr, *timeout)
	picks, err := api.dailyPicks(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "daily picks: %v\n", err)
		os.Exit(1)
	}
	if err := renderPicks(os.Stdout, picks); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}

	if !*withBankroll {
		return
	}
	states, err := api.bankrolls(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankroll: %v\n", err)
		os.Exit(1)
	}
	if err := renderBankrolls(os.Stdout, states); err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
