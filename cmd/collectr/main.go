package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/eightythreeapps/collectr/config"
	"github.com/eightythreeapps/collectr/logging"
	"github.com/eightythreeapps/collectr/metadata"
	"github.com/eightythreeapps/collectr/platform"
	"github.com/eightythreeapps/collectr/tracing"
)

var cfg *config.Config

func main() {
	ctx := context.Background()

	// Load config
	var err error
	cfg, err = config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Setup Logging
	logging.Setup(cfg.Logging)

	// Setup Tracing
	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logging.Error("failed to setup tracing", "error", err)
	}
	defer func() {
		if shutdown != nil {
			if err := shutdown(ctx); err != nil {
				logging.Error("failed to shutdown tracing", "error", err)
			}
		}
	}()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "search":
		handleSearchCommand(ctx, os.Args[2:])
	case "barcode":
		handleBarcodeCommand(ctx, os.Args[2:])
	case "platforms":
		handlePlatformsCommand()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("collectr - federated game metadata search")
	fmt.Println()
	fmt.Println("Usage: collectr <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search <query> [--platform P] [--limit N] [--offset N]")
	fmt.Println("                        Search both providers for a title")
	fmt.Println("  barcode <upc>         Look up a game by barcode/UPC")
	fmt.Println("  platforms             List the canonical platform vocabulary")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  IGDB_CLIENT_ID, IGDB_CLIENT_SECRET  Primary provider credentials")
	fmt.Println("  RAWG_API_KEY                        Fallback provider key (optional)")
	fmt.Println("  COLLECTR_CONFIG                     Explicit config file path")
}

func buildService() *metadata.Service {
	primary, err := metadata.NewIGDBProvider(cfg.IGDB.ClientID, cfg.IGDB.ClientSecret)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v (set IGDB_CLIENT_ID and IGDB_CLIENT_SECRET)\n", err)
		os.Exit(1)
	}
	fallback := metadata.NewRAWGProvider(cfg.RAWG.APIKey)
	return metadata.NewService(primary, fallback)
}

func handleSearchCommand(ctx context.Context, args []string) {
	var queryParts []string
	plat := platform.None
	limit := cfg.GetDefaultLimit()
	offset := 0

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--platform" && i+1 < len(args):
			i++
			p, ok := platform.Parse(args[i])
			if !ok {
				_, _ = fmt.Fprintf(os.Stderr, "Error: unknown platform %q (see 'collectr platforms')\n", args[i])
				os.Exit(1)
			}
			plat = p
		case args[i] == "--limit" && i+1 < len(args):
			i++
			limit = parseIntArg(args[i], "--limit")
		case args[i] == "--offset" && i+1 < len(args):
			i++
			offset = parseIntArg(args[i], "--offset")
		default:
			queryParts = append(queryParts, args[i])
		}
	}

	query := strings.Join(queryParts, " ")
	if query == "" {
		fmt.Println("Usage: collectr search <query> [--platform P] [--limit N] [--offset N]")
		os.Exit(1)
	}

	results, err := buildService().Search(ctx, query, plat, limit, offset)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printResults(results)
}

func handleBarcodeCommand(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: collectr barcode <upc>")
		os.Exit(1)
	}

	results, err := buildService().SearchBarcode(ctx, args[0])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printResults(results)
}

func handlePlatformsCommand() {
	for _, p := range platform.All() {
		fmt.Println(p)
	}
}

func printResults(results []metadata.SearchResult) {
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCORE\tTITLE\tPLATFORM\tYEAR\tPUBLISHER\tID")
	for _, r := range results {
		_, _ = fmt.Fprintf(w, "%.2f\t%s\t%s\t%d\t%s\t%s\n",
			r.RelevanceScore, r.Title, r.Platform, r.Year, r.Publisher, r.ID)
	}
	_ = w.Flush()
}

func parseIntArg(s, flag string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s expects a non-negative integer, got %q\n", flag, s)
		os.Exit(1)
	}
	return n
}
