package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/docuflow/console/internal/app"
	"github.com/docuflow/console/internal/client"
	"github.com/docuflow/console/internal/config"
)

func main() {
	serverURL := flag.String("server", "", "Workflow server base URL (overrides config)")
	configPath := flag.String("config", "", "Path to config file")
	docURI := flag.String("doc", "", "Document URI to process (required)")
	title := flag.String("title", "", "Document title")
	pages := flag.Int("pages", 0, "Document page count")
	flag.Parse()

	if *docURI == "" {
		fmt.Fprintln(os.Stderr, "Usage: docuflow-tui -doc <uri> [-title t] [-pages n] [-server url]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.Server.BaseURL = *serverURL
	}

	httpClient := client.NewHTTPClient(cfg.Server.BaseURL, cfg.Server.HTTPTimeout)
	streamClient := client.NewStreamClient(cfg.Server.BaseURL, cfg.Stream.ReadTimeout)

	m := app.New(httpClient, streamClient, client.StartRequest{
		DocumentURI:   *docURI,
		DocumentTitle: *title,
		PageCount:     *pages,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
