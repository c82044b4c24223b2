package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		os.Exit(runSystemNoun(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "user":
		os.Exit(runUserNoun(args))
	case "webhook":
		os.Exit(runWebhookNoun(args))

	// --- ROOT ALIASES ---
	case "start":
		os.Exit(runStart(args))
	case "version":
		fmt.Printf("clerk-sync version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`clerk-sync - Clerk webhook receiver that keeps a local user store in sync

Usage:
  clerk-sync <noun> <action> [flags]

System Commands:
  system start              Start the webhook server in the foreground

Config Commands:
  config check              Validate configuration and signing secret
  config lock               Write BLAKE3 integrity checksums for the config

User Commands:
  user list                 List synced users
  user show <external_id>   Show one synced user

Webhook Commands:
  webhook sign              Print svix headers for a payload (local testing)

General:
  version                   Show version information
  help                      Show this help message

All commands accept --config <path> (default $CLERK_SYNC_CONFIG or ./config.yaml).
`)
}

// --- NOUN DISPATCHERS ---

type action func(args []string) int

func dispatchNoun(noun, usage string, actions map[string]action, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}
	if isHelpToken(args[0]) {
		fmt.Println(usage)
		return 0
	}

	run, ok := actions[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown %s action: %s\n", noun, args[0])
		return 1
	}
	return run(args[1:])
}

func runSystemNoun(args []string) int {
	return dispatchNoun("system", "Usage: clerk-sync system start [--config PATH]",
		map[string]action{"start": runStart}, args)
}

func runConfigNoun(args []string) int {
	return dispatchNoun("config", "Usage: clerk-sync config <check|lock> [--config PATH]",
		map[string]action{"check": runConfigCheck, "lock": runConfigLock}, args)
}

func runUserNoun(args []string) int {
	return dispatchNoun("user", "Usage: clerk-sync user <list | show EXTERNAL_ID> [--config PATH] [--json]",
		map[string]action{"list": runUserList, "show": runUserShow}, args)
}

func runWebhookNoun(args []string) int {
	return dispatchNoun("webhook", "Usage: clerk-sync webhook sign --file PAYLOAD [--id ID] [--timestamp UNIX] [--secret SECRET] [--config PATH]",
		map[string]action{"sign": runWebhookSign}, args)
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}
