package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-authgate/connectgate/internal/bootstrap"
	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/version"
)

func main() {
	// Define flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = printUsage
	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	// Check if command is provided
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// Handle subcommands
	switch args[0] {
	case "server":
		if err := bootstrap.Run(config.Load()); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case "version":
		version.PrintVersion()
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Usage: %s [OPTIONS] COMMAND\n\n", os.Args[0])
	fmt.Println("Discord and Notion connection service")
	fmt.Println("\nCommands:")
	fmt.Println("  server     Start the HTTP server")
	fmt.Println("  version    Show version information")
	fmt.Println("\nOptions:")
	fmt.Println("  -v, --version    Show version information")
	fmt.Println("  -h, --help       Show this help message")
}
