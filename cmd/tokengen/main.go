// Package main provides a CLI tool for minting caller tokens for the vaxledger API.
// Tokens signed with the dev key will NOT work against a server configured
// with a real JWT_SIGNING_KEY.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "vaxledger/internal/jwt_token"
	id "vaxledger/pkg/domain"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	// Default admin token suggested for local runs (ADMIN_API_TOKEN)
	devAdminToken = "demo-admin-token"

	defaultIssuer   = "vaxledger"
	defaultAudience = "vaxledger-api"
	defaultTokenTTL = 24 * time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	callerCmd := flag.NewFlagSet("caller", flag.ExitOnError)
	adminCmd := flag.NewFlagSet("admin", flag.ExitOnError)

	callerAddress := callerCmd.String("address", "", "Caller address (token subject). Required.")
	callerLabel := callerCmd.String("label", "", "Free form label, e.g. the center name")
	callerTTL := callerCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	callerKey := callerCmd.String("key", devSigningKey, "HS256 signing key (JWT_SIGNING_KEY)")
	callerIssuer := callerCmd.String("issuer", defaultIssuer, "Token issuer (JWT_ISSUER)")
	callerAudience := callerCmd.String("audience", defaultAudience, "Token audience (JWT_AUDIENCE)")
	callerJSON := callerCmd.Bool("json", false, "Output as JSON")

	adminJSON := adminCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "caller":
		callerCmd.Parse(os.Args[2:])
		generateCallerToken(*callerAddress, *callerLabel, *callerKey, *callerIssuer, *callerAudience, *callerTTL, *callerJSON)
	case "admin":
		adminCmd.Parse(os.Args[2:])
		showAdminToken(*adminJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Mint caller tokens for the vaxledger API

Usage:
  tokengen <command> [flags]

Commands:
  caller    Mint a bearer token for a caller address
  admin     Show the suggested local admin API token

Examples:
  # Token for a vaccination center
  tokengen caller -address 0x6b1c7a0e3f3b0dbb1d4b0c1f1e2a9d8c7b6a5f40 -label "Municipal Vac #12"

  # Short lived checkpoint token
  tokengen caller -address 0xcheckpoint -ttl 1h

  # Output as JSON
  tokengen caller -address 0xcheckpoint -json

  # Get admin token for X-Admin-Token header
  tokengen admin

Use "tokengen <command> -h" for more information about a command.`)
}

func generateCallerToken(address, label, key, issuer, audience string, ttl time.Duration, jsonOutput bool) {
	addr, err := id.ParseAddress(address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -address: %v\n", err)
		os.Exit(1)
	}

	svc := jwttoken.NewJWTService(key, issuer, audience, ttl)
	token, err := svc.IssueCallerToken(context.Background(), addr, label)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	keyType := "custom"
	if key == devSigningKey {
		keyType = "dev"
	}

	if jsonOutput {
		output := tokenOutput{
			Token:     token,
			Type:      "caller_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub":   addr.String(),
				"label": label,
				"iss":   issuer,
				"aud":   audience,
			},
			Usage: map[string]string{
				"header":      "Authorization: Bearer <token>",
				"signing_key": keyType,
			},
		}
		printJSON(output)
		return
	}

	fmt.Println("Caller Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Signing Key: %s\n", keyType)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Printf("Address:     %s\n", addr)
	if label != "" {
		fmt.Printf("Label:       %s\n", label)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/vaccinations/validate ...")
}

func showAdminToken(jsonOutput bool) {
	if jsonOutput {
		output := tokenOutput{
			Token: devAdminToken,
			Type:  "admin_token",
			Usage: map[string]string{
				"header": "X-Admin-Token: " + devAdminToken,
				"note":   "Start the server with ADMIN_API_TOKEN=" + devAdminToken,
			},
		}
		printJSON(output)
		return
	}

	fmt.Println("Admin API Token")
	fmt.Println("===============")
	fmt.Printf("Token: %s\n", devAdminToken)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"X-Admin-Token: " + devAdminToken + "\" http://localhost:8080/admin/centers ...")
	fmt.Println()
	fmt.Println("Note: the server must be started with ADMIN_API_TOKEN=" + devAdminToken)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
