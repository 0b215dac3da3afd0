package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/fio-node/internal/config"
	"github.com/dvloznov/fio-node/internal/domain"
	"github.com/dvloznov/fio-node/internal/export"
	"github.com/dvloznov/fio-node/internal/fio"
	"github.com/dvloznov/fio-node/internal/logger"
	"github.com/dvloznov/fio-node/internal/node"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{Format: "console"})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	switch os.Args[1] {
	case "balance":
		runBalance(cfg, log)
	case "transactions":
		runTransactions(cfg, log)
	case "pay":
		runPay(cfg, log)
	case "columns":
		runColumns()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Fio Node CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  balance       Show today's account balance")
	fmt.Println("  transactions  List account movements for a date range")
	fmt.Println("  pay           Submit a domestic payment order")
	fmt.Println("  columns       List the statement column codes and their names")
	fmt.Println("  help          Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
	fmt.Println("\nThe API token is read from FIO_FIO_TOKEN or the config file.")
}

func newDispatcher(cfg config.Config, log zerolog.Logger) *node.Dispatcher {
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	client := fio.NewClient(cfg.Fio.Token,
		fio.WithBaseURL(cfg.Fio.BaseURL),
		fio.WithHTTPClient(&http.Client{Timeout: cfg.Fio.Timeout}),
		fio.WithLogger(log),
	)
	return node.NewDispatcher(client, log)
}

func runBalance(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	execute(cfg, log, node.ExecuteRequest{
		Parameters: node.Parameters{Operation: node.OperationGetBalance},
		Items:      []node.Item{{JSON: map[string]any{}}},
	})
}

func runTransactions(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	from := fs.String("from", "", "Start date YYYY-MM-DD (defaults to 7 days ago)")
	to := fs.String("to", "", "End date YYYY-MM-DD (defaults to today)")
	format := fs.String("format", "json", "Output format: json, csv or xlsx")
	out := fs.String("out", "", "Write the listing to this file instead of stdout")
	fs.Parse(os.Args[2:])

	req := node.ExecuteRequest{
		Parameters: node.Parameters{
			Operation: node.OperationGetTransactions,
			DateFrom:  *from,
			DateTo:    *to,
		},
		Items: []node.Item{{JSON: map[string]any{}}},
	}

	if *format == "json" && *out == "" {
		execute(cfg, log, req)
		return
	}

	var exportFormat export.Format
	if *format != "json" {
		f, err := export.ParseFormat(*format)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid -format")
		}
		exportFormat = f
	}

	outputs := run(cfg, log, req)

	txs := make([]domain.Transaction, 0, len(outputs))
	for _, o := range outputs {
		if tx, ok := o.JSON.(domain.Transaction); ok {
			txs = append(txs, tx)
		}
	}

	write := func(w io.Writer) error {
		if exportFormat == "" {
			return encodeJSON(w, outputs)
		}
		return export.Transactions(w, txs, exportFormat)
	}
	if err := writeOutput(*out, write); err != nil {
		log.Fatal().Err(err).Msg("Failed to write transactions")
	}
	log.Info().Int("transactions", len(txs)).Str("file", *out).Msg("Wrote transactions")
}

func runPay(cfg config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("pay", flag.ExitOnError)
	source := fs.String("source", string(fio.SourceManual), "Payment data source: manual or input")
	accountFrom := fs.String("account-from", "", "Source account number")
	accountTo := fs.String("account-to", "", "Recipient account number")
	bankCode := fs.String("bank-code", "", "Recipient bank code")
	amount := fs.String("amount", "", "Amount, must be positive")
	date := fs.String("date", "", "Due date YYYY-MM-DD")
	currency := fs.String("currency", "CZK", "Currency code")
	message := fs.String("message", "", "Message for the recipient")
	input := fs.String("input", "", "JSON file with one payment object or an array of them (input source)")
	dryRun := fs.Bool("dry-run", false, "Print the multipart request body instead of sending it")
	continueOnFail := fs.Bool("continue-on-fail", cfg.Node.ContinueOnFail, "Report failing payments and keep going")
	fs.Parse(os.Args[2:])

	params := node.Parameters{
		Operation:     node.OperationPayment,
		PaymentSource: fio.PaymentSource(*source),
	}
	items := []node.Item{{JSON: map[string]any{}}}

	switch params.PaymentSource {
	case fio.SourceManual:
		params.Payment = map[string]any{
			"accountFrom": *accountFrom,
			"accountTo":   *accountTo,
			"bankCode":    *bankCode,
			"amount":      *amount,
			"date":        *date,
			"currency":    *currency,
		}
		if *message != "" {
			params.Payment["messageForRecipient"] = *message
		}
	case fio.SourceInput:
		if *input == "" {
			log.Fatal().Msg("Error: -input is required with -source input")
		}
		var err error
		items, err = readItems(*input)
		if err != nil {
			log.Fatal().Err(err).Str("file", *input).Msg("Failed to read payment input")
		}
	default:
		log.Fatal().Str("source", *source).Msg("Error: -source must be manual or input")
	}

	if *dryRun {
		printDryRun(params, items, log)
		return
	}

	execute(cfg, log, node.ExecuteRequest{
		Parameters:     params,
		Items:          items,
		ContinueOnFail: *continueOnFail,
	})
}

// readItems loads a JSON object or an array of objects as input items.
func readItems(path string) ([]node.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(strings.TrimSpace(string(data)), "[") {
		var objs []map[string]any
		if err := json.Unmarshal(data, &objs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		items := make([]node.Item, 0, len(objs))
		for _, obj := range objs {
			items = append(items, node.Item{JSON: obj})
		}
		return items, nil
	}

	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return []node.Item{{JSON: obj}}, nil
}

// printDryRun writes the import request bodies with a placeholder token.
func printDryRun(params node.Parameters, items []node.Item, log zerolog.Logger) {
	for i, item := range items {
		raw, err := fio.ResolvePaymentSource(params.PaymentSource, params.Payment, item.JSON)
		if err != nil {
			log.Fatal().Err(err).Int("item", i).Msg("Invalid payment")
		}
		order, err := fio.ValidatePayment(raw)
		if err != nil {
			log.Fatal().Err(err).Int("item", i).Msg("Invalid payment")
		}
		payload, err := fio.EncodePayment(order, "<token>")
		if err != nil {
			log.Fatal().Err(err).Int("item", i).Msg("Failed to encode payment")
		}
		fmt.Printf("Content-Type: %s\n\n%s\n\n", payload.ContentType(), payload.Body)
	}
}

func runColumns() {
	for _, c := range fio.Columns() {
		fmt.Printf("%-8s %s\n", c.Code, c.Name)
	}
}

func execute(cfg config.Config, log zerolog.Logger, req node.ExecuteRequest) {
	writeJSON(os.Stdout, run(cfg, log, req), log)
}

func run(cfg config.Config, log zerolog.Logger, req node.ExecuteRequest) []node.Output {
	dispatcher := newDispatcher(cfg, log)

	ctx := logger.WithContext(context.Background(), log)
	outputs, err := dispatcher.Execute(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Str("operation", string(req.Parameters.Operation)).Msg("Execution failed")
	}
	return outputs
}

func writeJSON(w io.Writer, v any, log zerolog.Logger) {
	if err := encodeJSON(w, v); err != nil {
		log.Fatal().Err(err).Msg("Failed to write output")
	}
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutput runs write against stdout, or against the file at path when
// set. The file is closed before returning and a failed close is an error.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
