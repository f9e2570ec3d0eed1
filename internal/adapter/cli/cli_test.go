package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bkyoung/claim-verifier/internal/adapter/cli"
	"github.com/bkyoung/claim-verifier/internal/domain"
)

type verifierStub struct {
	claim  domain.Claim
	result domain.VerificationResult
	err    error
}

func (v *verifierStub) Verify(ctx context.Context, claim domain.Claim) (domain.VerificationResult, error) {
	v.claim = claim
	return v.result, v.err
}

func sampleResult() domain.VerificationResult {
	return domain.VerificationResult{
		ID:                "result-1",
		Verdict:           domain.VerdictTrue,
		AuthenticityScore: 0.85,
		Explanation:       "Multiple sources confirm the reported figure.",
		Category:          "business",
		Evidence: []domain.EvidenceItem{
			{
				URL:        "https://www.reuters.com/intel-q3",
				Title:      "Intel Reports Strong Q3",
				Confidence: 0.84,
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestVerifyCommandInvokesPipeline(t *testing.T) {
	stub := &verifierStub{result: sampleResult()}
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: stub,
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		IsTTY:    func() bool { return false },
	})

	root.SetArgs([]string{"verify", "Intel reported $4.1 billion profit in Q3 2024"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	if stub.claim.Text != "Intel reported $4.1 billion profit in Q3 2024" {
		t.Fatalf("unexpected claim text: %s", stub.claim.Text)
	}

	found := false
	for _, e := range stub.claim.Entities {
		if e == "Intel" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Intel among extracted entities, got %v", stub.claim.Entities)
	}
}

func TestVerifyCommandEmitsJSONWhenNotTTY(t *testing.T) {
	stub := &verifierStub{result: sampleResult()}
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: stub,
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		IsTTY:    func() bool { return false },
	})

	root.SetArgs([]string{"verify", "some claim"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	var result domain.VerificationResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if result.Verdict != domain.VerdictTrue {
		t.Fatalf("expected verdict true, got %s", result.Verdict)
	}
}

func TestVerifyCommandHumanSummaryOnTTY(t *testing.T) {
	stub := &verifierStub{result: sampleResult()}
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: stub,
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		IsTTY:    func() bool { return true },
	})

	root.SetArgs([]string{"verify", "Intel reported $4.1 billion profit in Q3 2024"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"Verdict:  true (score 0.85)", "Category: business", "Evidence (1 sources)", "reuters.com"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestVerifyCommandJSONFlagOverridesTTY(t *testing.T) {
	stub := &verifierStub{result: sampleResult()}
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: stub,
		Args:     cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		IsTTY:    func() bool { return true },
	})

	root.SetArgs([]string{"verify", "some claim", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}

	var result domain.VerificationResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestVerifyCommandPropagatesError(t *testing.T) {
	stub := &verifierStub{err: errors.New("pipeline exploded")}
	root := cli.NewRootCommand(cli.Dependencies{
		Verifier: stub,
		Args:     cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
		IsTTY:    func() bool { return false },
	})

	root.SetArgs([]string{"verify", "some claim"})
	err := root.Execute()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "pipeline exploded") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServeCommandRunsServer(t *testing.T) {
	called := false
	root := cli.NewRootCommand(cli.Dependencies{
		Serve: func(ctx context.Context) error {
			called = true
			return nil
		},
		Args: cli.Arguments{OutWriter: io.Discard, ErrWriter: io.Discard},
	})

	root.SetArgs([]string{"serve"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}
	if !called {
		t.Fatal("expected serve function to be invoked")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := cli.NewRootCommand(cli.Dependencies{
		Args:    cli.Arguments{OutWriter: &out, ErrWriter: io.Discard},
		Version: "v1.2.3",
	})

	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("command execution failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "v1.2.3" {
		t.Fatalf("unexpected version output: %q", out.String())
	}
}
