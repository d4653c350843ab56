// Command alchemy calls the text analysis service from the command line and
// prints each result as JSON.
//
// Usage:
//
//	alchemy [flags] <capability> <flavor> <data>
//	alchemy [flags] batch <flavor> <data> <capability>...
//	alchemy capabilities
//
// Data "-" reads the payload from stdin. For the image flavor, data is the
// path of a local file to upload.
//
// The API key and base URL come from pkg/config (ALCHEMY_API_KEY,
// ALCHEMY_BASE_URL, ALCHEMY_CONFIG or a config file).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rhuss/alchemy/pkg/alchemy"
	"github.com/rhuss/alchemy/pkg/config"
	"github.com/rhuss/alchemy/pkg/debug"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1 // a call failed or the service reported an error
	exitUsage   = 2
	exitRuntime = 3 // configuration or client setup failed
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// optionFlags collects repeated -opt key=value flags.
type optionFlags map[string]string

func (o optionFlags) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o optionFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	o[key] = value
	return nil
}

type cliOptions struct {
	configPath  string
	target      string
	maxRetrieve int
	parallel    int
	pretty      bool
	extra       optionFlags
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := cliOptions{extra: optionFlags{}}

	fs := flag.NewFlagSet("alchemy", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to config file")
	fs.StringVar(&opts.target, "target", "", "target phrase for sentiment_targeted")
	fs.IntVar(&opts.maxRetrieve, "max-retrieve", 0, "maximum number of items to return")
	fs.IntVar(&opts.parallel, "parallel", 4, "concurrent calls in batch mode")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent JSON output")
	fs.Var(opts.extra, "opt", "extra service parameter as key=value (repeatable)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: alchemy [flags] <capability> <flavor> <data>")
		fmt.Fprintln(stderr, "       alchemy [flags] batch <flavor> <data> <capability>...")
		fmt.Fprintln(stderr, "       alchemy capabilities")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	if rest[0] == "capabilities" {
		printCapabilities(stdout)
		return exitOK
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "alchemy: %v\n", err)
		return exitRuntime
	}
	debug.Init(debug.Settings{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})

	client, err := alchemy.NewWithConfig(cfg.ClientConfig())
	if err != nil {
		fmt.Fprintf(stderr, "alchemy: %v (set ALCHEMY_API_KEY or service.api_key)\n", err)
		return exitRuntime
	}
	defer client.Close()

	if rest[0] == "batch" {
		if len(rest) < 4 {
			fs.Usage()
			return exitUsage
		}
		return runBatch(ctx, client, opts, rest[1], rest[2], rest[3:], stdin, stdout, stderr)
	}

	if len(rest) != 3 {
		fs.Usage()
		return exitUsage
	}
	return runSingle(ctx, client, opts, rest[0], rest[1], rest[2], stdin, stdout, stderr)
}

func runSingle(ctx context.Context, client *alchemy.Client, opts cliOptions, capName, flavorName, data string,
	stdin io.Reader, stdout, stderr io.Writer) int {
	req, err := buildRequest(opts, capName, flavorName, data, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "alchemy: %v\n", err)
		return exitUsage
	}

	debug.Log("cli", "calling", "capability", req.Capability, "flavor", req.Flavor)
	res := client.Call(ctx, req)

	if err := writeJSON(stdout, res, opts.pretty); err != nil {
		fmt.Fprintf(stderr, "alchemy: %v\n", err)
		return exitRuntime
	}
	return exitCode(res)
}

// buildRequest validates names and assembles a Request. Unknown names are
// rejected here; unsupported combinations are left to the client so the
// error document matches the service's wording.
func buildRequest(opts cliOptions, capName, flavorName, data string, stdin io.Reader) (alchemy.Request, error) {
	capability, ok := alchemy.ParseCapability(capName)
	if !ok {
		return alchemy.Request{}, fmt.Errorf("unknown capability %q (see 'alchemy capabilities')", capName)
	}
	flavor, ok := alchemy.ParseFlavor(flavorName)
	if !ok {
		return alchemy.Request{}, fmt.Errorf("unknown flavor %q (text, url, html, image)", flavorName)
	}

	if data == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return alchemy.Request{}, fmt.Errorf("reading stdin: %w", err)
		}
		data = string(raw)
	}

	return alchemy.Request{
		Capability: capability,
		Flavor:     flavor,
		Data:       data,
		Target:     opts.target,
		Options:    requestOptions(opts),
	}, nil
}

func requestOptions(opts cliOptions) *alchemy.Options {
	o := &alchemy.Options{MaxRetrieve: opts.maxRetrieve}
	if len(opts.extra) > 0 {
		o.Extra = map[string]string(opts.extra)
	}
	return o
}

// exitCode maps a result to the process exit code.
func exitCode(res alchemy.Result) int {
	if status, _ := res.ServiceStatus(); status == alchemy.StatusError {
		return exitFailed
	}
	return exitOK
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func printCapabilities(w io.Writer) {
	for _, c := range alchemy.Capabilities() {
		flavors := alchemy.Flavors(c)
		names := make([]string, len(flavors))
		for i, f := range flavors {
			names[i] = string(f)
		}
		fmt.Fprintf(w, "%-20s %s\n", c, strings.Join(names, ","))
	}
}
