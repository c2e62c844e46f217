package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docuflow/console/internal/mockflow"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "Listen address")
	delay := flag.Duration("delay", 600*time.Millisecond, "Pause between scripted events")
	fail := flag.Bool("fail", false, "Replay the failing scenario")
	result := flag.String("result", "", "Override the scripted workflow result")
	flag.Parse()

	scenario := mockflow.DefaultScenario()
	if *fail {
		scenario = mockflow.FailingScenario("compliance check crashed")
	}
	if *result != "" {
		scenario.Result = *result
	}

	srv := mockflow.NewServer(scenario, *delay)
	mux := http.NewServeMux()
	srv.SetupRoutes(mux)

	httpServer := &http.Server{Addr: *addr, Handler: mux}

	go func() {
		log.Printf("mockflow listening on http://%s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}
