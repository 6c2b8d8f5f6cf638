// Package main provides the entry point for the talent matcher HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "talentmatcher",
	Short: "Talent Matcher HTTP API Server",
	Long:  "Talent Matcher pairs job candidates with postings using Gemini embeddings, a Pinecone vector index, and LLM match evaluation via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
