package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hanpama/graphkit/internal/document"
	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/executor"
	"github.com/hanpama/graphkit/internal/httptp"
	"github.com/hanpama/graphkit/internal/introspection"
	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/logging"
	"github.com/hanpama/graphkit/internal/otel"
	"github.com/hanpama/graphkit/internal/schema"
	"github.com/hanpama/graphkit/internal/selection"
)

const rootUsage = `graphkit - typed GraphQL client tools

USAGE:
  graphkit <command> [flags]

COMMANDS:
  query            Run a query against an endpoint and print the delivered values
  mutation         Run a mutation against an endpoint and print the delivered values
  schema           Introspect an endpoint and print its SDL
  render           Load SDL and print its normalized form
  help             Show help for any command
`

const executeUsage = `query / mutation FLAGS:
  -endpoint <url>              GraphQL endpoint (required)
  -schema <file>               SDL file; the endpoint is introspected when omitted
  -op <field>                  Root field to select (required)
  -select <paths>              Comma separated sub-selections, e.g. id,name,address.city
  -arg <[path.]name=literal>   Argument as a GraphQL literal. Repeatable. A bare
                               name applies to the root field; posts.limit=3
                               applies to the nested posts field
  -header <Name: value>        Extra request header. Repeatable
  -get                         Send the document as a GET query parameter
  -print-document              Print the sent document before the values
  -timeout <duration>          Request timeout (default: 30s)
  -log.level <level>           debug, info, warn or error (default: warn)
  -otel.endpoint <addr>        OTLP collector endpoint
  -otel.service <name>         OpenTelemetry service name (default: graphkit)
`

const schemaUsage = `schema FLAGS:
  -endpoint <url>              GraphQL endpoint (required)
  -header <Name: value>        Extra request header. Repeatable
  -timeout <duration>          Request timeout (default: 30s)
  -out <file>                  Write SDL to file (default: stdout)
`

const renderUsage = `render FLAGS:
  -schema <file>               SDL file (required)
  -out <file>                  Write SDL to file (default: stdout)
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("graphkit", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "query":
		return cmdExecute(language.Query, cmdArgs, stdout, stderr)
	case "mutation":
		return cmdExecute(language.Mutation, cmdArgs, stdout, stderr)
	case "schema":
		return cmdSchema(cmdArgs, stdout, stderr)
	case "render":
		return cmdRender(cmdArgs, stdout, stderr)
	case "help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "query", "mutation":
		fmt.Fprint(stdout, executeUsage)
	case "schema":
		fmt.Fprint(stdout, schemaUsage)
	case "render":
		fmt.Fprint(stdout, renderUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdExecute(kind language.Operation, args []string, stdout, stderr io.Writer) error {
	endpoint := ""
	schemaFile := ""
	op := ""
	sel := ""
	get := false
	printDocument := false
	timeout := 30 * time.Second
	logLevel := "warn"
	otelEndpoint := ""
	otelService := "graphkit"
	var argFlags, headers stringListFlag

	fs := flag.NewFlagSet(string(kind), flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&endpoint, "endpoint", endpoint, "GraphQL endpoint")
	fs.StringVar(&schemaFile, "schema", schemaFile, "SDL file")
	fs.StringVar(&op, "op", op, "Root field to select")
	fs.StringVar(&sel, "select", sel, "Comma separated sub-selections")
	fs.Var(&argFlags, "arg", "Argument as a GraphQL literal")
	fs.Var(&headers, "header", "Extra request header")
	fs.BoolVar(&get, "get", get, "Send the document as a GET query parameter")
	fs.BoolVar(&printDocument, "print-document", printDocument, "Print the sent document")
	fs.DurationVar(&timeout, "timeout", timeout, "Request timeout")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, executeUsage)
		return err
	}
	if endpoint == "" || op == "" {
		fmt.Fprint(stderr, executeUsage)
		return fmt.Errorf("-endpoint and -op are required")
	}
	arguments, err := parseArgs(argFlags)
	if err != nil {
		return err
	}
	paths, err := parseSelect(sel)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	_, flush, err := logging.Setup(logLevel)
	if err != nil {
		return err
	}
	defer flush()
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	tp, err := newTransport(headers, timeout)
	if err != nil {
		return err
	}
	defer tp.Close()
	var eopts []executor.Option
	if get {
		eopts = append(eopts, executor.WithGET())
	}
	exec := executor.NewExecutor(endpoint, tp, eopts...)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sch, err := loadSchema(ctx, schemaFile, exec)
	if err != nil {
		return err
	}
	root := sch.GetQueryType()
	if kind == language.Mutation {
		root = sch.GetMutationType()
	}
	if root == nil {
		return fmt.Errorf("schema has no %s type", kind)
	}

	selector, err := buildSelector(root, &selectPath{name: op, children: paths}, arguments, stdout)
	if err != nil {
		return err
	}
	operation, err := selection.NewOperation(root, selector)
	if err != nil {
		return err
	}

	if printDocument {
		fmt.Fprintln(stdout, "# "+document.Serialize([]executor.Operation{operation}, kind))
	}
	res, err := exec.Execute(ctx, kind, operation)
	if res != nil {
		for _, e := range res.Errors {
			fmt.Fprintf(stderr, "error: %s\n", e.Error())
		}
	}
	return err
}

func cmdSchema(args []string, stdout, stderr io.Writer) error {
	endpoint := ""
	outFile := ""
	timeout := 30 * time.Second
	var headers stringListFlag

	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&endpoint, "endpoint", endpoint, "GraphQL endpoint")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	fs.Var(&headers, "header", "Extra request header")
	fs.DurationVar(&timeout, "timeout", timeout, "Request timeout")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, schemaUsage)
		return err
	}
	if endpoint == "" {
		fmt.Fprint(stderr, schemaUsage)
		return fmt.Errorf("-endpoint is required")
	}

	tp, err := newTransport(headers, timeout)
	if err != nil {
		return err
	}
	defer tp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	sch, err := introspection.Fetch(ctx, executor.NewExecutor(endpoint, tp))
	if err != nil {
		return fmt.Errorf("introspect: %w", err)
	}
	return writeOutput(stdout, outFile, schema.Render(sch))
}

func cmdRender(args []string, stdout, stderr io.Writer) error {
	schemaFile := ""
	outFile := ""
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "SDL file")
	fs.StringVar(&outFile, "out", outFile, "Write SDL to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, renderUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(stderr, renderUsage)
		return fmt.Errorf("-schema is required")
	}
	sch, err := loadSchemaFile(schemaFile)
	if err != nil {
		return err
	}
	return writeOutput(stdout, outFile, schema.Render(sch))
}

func writeOutput(stdout io.Writer, outFile, s string) error {
	if outFile == "" {
		_, err := io.WriteString(stdout, s)
		return err
	}
	return os.WriteFile(outFile, []byte(s), 0644)
}

func newTransport(headers []string, timeout time.Duration) (*httptp.Transport, error) {
	opts := []httptp.Option{httptp.WithTimeout(timeout)}
	for _, h := range headers {
		name, val, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q", h)
		}
		opts = append(opts, httptp.WithHeader(name, strings.TrimSpace(val)))
	}
	return httptp.New(opts...), nil
}

func loadSchema(ctx context.Context, file string, exec *executor.Executor) (*schema.Schema, error) {
	if file != "" {
		return loadSchemaFile(file)
	}
	sch, err := introspection.Fetch(ctx, exec)
	if err != nil {
		return nil, fmt.Errorf("introspect: %w", err)
	}
	return sch, nil
}

func loadSchemaFile(file string) (*schema.Schema, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return schema.LoadSDL(file, string(b))
}
