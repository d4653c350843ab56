package main

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/rhuss/alchemy/pkg/alchemy"
	"github.com/rhuss/alchemy/pkg/debug"
)

// runBatch runs several capabilities over the same payload concurrently on
// one client and prints a single JSON object keyed by capability. Every
// capability gets its result, so one failing call does not cancel the rest.
func runBatch(ctx context.Context, client *alchemy.Client, opts cliOptions, flavorName, data string, capNames []string,
	stdin io.Reader, stdout, stderr io.Writer) int {
	if data == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "alchemy: reading stdin: %v\n", err)
			return exitUsage
		}
		data = string(raw)
	}

	requests := make([]alchemy.Request, 0, len(capNames))
	seen := make(map[string]bool, len(capNames))
	for _, name := range capNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		req, err := buildRequest(opts, name, flavorName, data, nil)
		if err != nil {
			fmt.Fprintf(stderr, "alchemy: %v\n", err)
			return exitUsage
		}
		requests = append(requests, req)
	}

	results := make([]alchemy.Result, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	if opts.parallel > 0 {
		g.SetLimit(opts.parallel)
	}
	for i, req := range requests {
		g.Go(func() error {
			results[i] = client.Call(gctx, req)
			debug.Log("cli", "batch call done", "capability", req.Capability, "ok", results[i].OK())
			return nil
		})
	}
	g.Wait()

	out := make(map[string]alchemy.Result, len(requests))
	code := exitOK
	for i, req := range requests {
		out[string(req.Capability)] = results[i]
		if exitCode(results[i]) != exitOK {
			code = exitFailed
		}
	}

	if err := writeJSON(stdout, out, opts.pretty); err != nil {
		fmt.Fprintf(stderr, "alchemy: %v\n", err)
		return exitRuntime
	}
	return code
}
