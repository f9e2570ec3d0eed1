// Package cli wires the verification pipeline into a cobra command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkyoung/claim-verifier/internal/domain"
	"github.com/bkyoung/claim-verifier/internal/extract"
)

// ClaimVerifier defines the dependency required to run the verify command.
type ClaimVerifier interface {
	Verify(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Verifier ClaimVerifier

	// Serve starts the HTTP API and blocks until the context is cancelled.
	Serve func(ctx context.Context) error

	Args    Arguments
	Version string

	// IsTTY overrides terminal detection, primarily for tests. Nil uses
	// the real check on stdout.
	IsTTY func() bool
}

// NewRootCommand constructs the root cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "cv",
		Short: "Claim verification pipeline CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	isTTY := deps.IsTTY
	if isTTY == nil {
		isTTY = IsOutputTerminal
	}

	root.AddCommand(verifyCommand(deps.Verifier, isTTY))
	root.AddCommand(serveCommand(deps.Serve))
	root.AddCommand(versionCommand(versionString))

	return root
}

func verifyCommand(verifier ClaimVerifier, isTTY func() bool) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "verify <claim>",
		Short: "Verify a single factual claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(args[0])
			if text == "" {
				return fmt.Errorf("claim text must not be empty")
			}

			claim := domain.Claim{
				Text:     text,
				Entities: extract.Entities(text),
			}

			result, err := verifier.Verify(cmd.Context(), claim)
			if err != nil {
				return fmt.Errorf("verify claim: %w", err)
			}

			if asJSON || !isTTY() {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			writeSummary(cmd.OutOrStdout(), text, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full result as JSON even on a terminal")

	return cmd
}

func serveCommand(serve func(ctx context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if serve == nil {
				return fmt.Errorf("server is not configured")
			}
			return serve(cmd.Context())
		},
	}
}

func versionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

func writeJSON(w io.Writer, result domain.VerificationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func writeSummary(w io.Writer, claimText string, result domain.VerificationResult) {
	fmt.Fprintf(w, "Claim:    %s\n", claimText)
	fmt.Fprintf(w, "Verdict:  %s (score %.2f)\n", result.Verdict, result.AuthenticityScore)
	if result.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", result.Category)
	}
	fmt.Fprintf(w, "\n%s\n", result.Explanation)

	if len(result.Evidence) == 0 {
		return
	}
	fmt.Fprintf(w, "\nEvidence (%d sources):\n", len(result.Evidence))
	for i, ev := range result.Evidence {
		fmt.Fprintf(w, "  %d. [%.2f] %s\n     %s\n", i+1, ev.Confidence, ev.Title, ev.URL)
	}
}
