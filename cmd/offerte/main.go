// Command offerte analyzes a price quote from the command line. It prints the
// extracted record, the fields that could not be found and the draft email.
//
// Usage:
//
//	offerte [-engine native|pdftotext] [-catalog prijslijst.json -merk SEAT -model Leon -motor "1.5 eTSI 150pk"] offerte.pdf
//
// Files ending in .txt are taken as already extracted text.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Jurgenvdlecq/seatemail/catalog"
	"github.com/Jurgenvdlecq/seatemail/config"
	"github.com/Jurgenvdlecq/seatemail/pdftext"
	"github.com/Jurgenvdlecq/seatemail/pkg/logger"
	"github.com/Jurgenvdlecq/seatemail/quote"
	"github.com/Jurgenvdlecq/seatemail/render"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage: offerte [flags] <offerte.pdf|offerte.txt>")

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("offerte", flag.ContinueOnError)
	fs.SetOutput(stderr)
	engine := fs.String("engine", config.EngineNative, "pdf engine: native or pdftotext")
	pdftotext := fs.String("pdftotext", "pdftotext", "path to the pdftotext binary")
	catalogPath := fs.String("catalog", "", "price list (.json, .csv or .xlsx)")
	brand := fs.String("merk", "", "brand to look up in the price list")
	modelName := fs.String("model", "", "model to look up in the price list")
	engineName := fs.String("motor", "", "engine to look up in the price list")
	logLevel := fs.String("log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	log := logger.New(&logger.Config{Level: *logLevel, Format: "text", Output: stderr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text, err := readText(ctx, fs.Arg(0), &config.PDFConfig{Engine: *engine, Pdftotext: *pdftotext}, log)
	if err != nil {
		return err
	}

	rec, drops := quote.Analyze(text)

	heading := color.New(color.FgCyan, color.Bold)
	warn := color.New(color.FgYellow)

	heading.Fprintf(stdout, "Offerte (%s)\n", rec.Variant())
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", out)

	if len(drops) > 0 {
		heading.Fprintln(stdout, "\nOntbrekende velden")
		for _, d := range drops {
			warn.Fprintf(stdout, "  %s: %s\n", d.Field, d.Reason)
		}
	}

	if *catalogPath != "" {
		if err := printPrice(stdout, *catalogPath, *brand, *modelName, *engineName); err != nil {
			return err
		}
	}

	view, err := render.Render(rec, render.Signature{})
	if err != nil {
		return err
	}
	heading.Fprintln(stdout, "\nE-mail")
	fmt.Fprintln(stdout, view.Email)
	return nil
}

func readText(ctx context.Context, path string, cfg *config.PDFConfig, log *slog.Logger) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return string(data), nil
	}
	if !pdftext.IsPDF(data) {
		return "", fmt.Errorf("%s is not a PDF file", path)
	}

	conv, err := pdftext.New(cfg, log)
	if err != nil {
		return "", err
	}
	log.Debug("converting pdf", "path", path, "engine", cfg.Engine, "bytes", len(data))
	return conv.Text(ctx, bytes.NewReader(data), int64(len(data)))
}

func printPrice(w io.Writer, path, brand, modelName, engine string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	heading := color.New(color.FgCyan, color.Bold)
	heading.Fprintln(w, "\nVanafprijs")

	entry, err := cat.Lookup(brand, modelName, engine)
	switch {
	case errors.Is(err, catalog.ErrIncompleteQuery):
		color.New(color.FgYellow).Fprintln(w, "  Geef -merk, -model en -motor op om de prijs op te zoeken.")
	case errors.Is(err, catalog.ErrNotFound):
		color.New(color.FgYellow).Fprintf(w, "  Geen prijs gevonden voor: %s %s (%s).\n", brand, modelName, engine)
		for _, s := range cat.Suggest(brand, modelName, engine, 3) {
			fmt.Fprintf(w, "  bedoelde u: %s %s (%s)?\n", s.Entry.Brand, s.Entry.Model, s.Entry.Engine)
		}
	case err != nil:
		return err
	default:
		fmt.Fprintf(w, "  %s %s (%s): %s\n", entry.Brand, entry.Model, entry.Engine, render.Euro(&entry.StartingPrice))
	}
	return nil
}
