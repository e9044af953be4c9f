package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"github.com/bcnelson/addrscope/internal/bulk"
	"github.com/bcnelson/addrscope/internal/config"
	"github.com/bcnelson/addrscope/internal/domain"
	"github.com/bcnelson/addrscope/internal/service"
	"github.com/bcnelson/addrscope/internal/validation"
	"github.com/bcnelson/addrscope/internal/watch"
)

var errUsage = errors.New("usage")

// cli carries the streams and configuration shared by every command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
}

// common holds the flags every command accepts.
type common struct {
	file      string
	softLimit int
	hardLimit int
	workers   int
	locale    string
}

func (c *cli) flags(name string, opts *common) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&opts.file, "f", "", "read input from `file`")
	fs.IntVar(&opts.softLimit, "soft", c.cfg.Bulk.SoftLimit, "warn above this many entries")
	fs.IntVar(&opts.hardLimit, "hard", c.cfg.Bulk.HardLimit, "truncate above this many entries")
	fs.IntVar(&opts.workers, "workers", c.cfg.Bulk.Workers, "concurrent analysis workers")
	fs.StringVar(&opts.locale, "locale", c.cfg.Display.Locale, "BCP-47 `tag` for number formatting")
	return fs
}

// parse reports every flag error, including -h, as a usage error. The flag
// package has already printed the message.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func (o *common) limits() domain.SplitOptions {
	return domain.SplitOptions{SoftLimit: o.softLimit, HardLimit: o.hardLimit}
}

func (o *common) service() (*service.InspectorService, error) {
	if errs := validation.ValidateLimits(o.limits()); errs.HasErrors() {
		return nil, errs
	}
	tag, err := language.Parse(o.locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", o.locale, err)
	}
	return service.NewInspectorService(nil, service.Options{
		Limits:  o.limits(),
		Workers: o.workers,
		Locale:  tag,
	}), nil
}

// input returns raw input from -f, the remaining arguments, or stdin.
func (c *cli) input(opts *common, args []string) (string, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return strings.Join(args, "\n"), nil
	}
	data, err := io.ReadAll(c.stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func (c *cli) reportParse(res domain.BulkParseResult) {
	for _, w := range res.Warnings {
		fmt.Fprintf(c.stderr, "warning: %s\n", w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(c.stderr, "error: %s\n", e)
	}
}

func runSplit(ctx context.Context, c *cli, args []string) error {
	var opts common
	fs := c.flags("split", &opts)
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}
	raw, err := c.input(&opts, fs.Args())
	if err != nil {
		return err
	}

	res := svc.Split(raw, opts.limits())
	c.reportParse(res)
	for _, e := range res.Entries {
		fmt.Fprintln(c.stdout, e)
	}
	return nil
}

func runClassify(ctx context.Context, c *cli, args []string) error {
	var opts common
	fs := c.flags("classify", &opts)
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}
	raw, err := c.input(&opts, fs.Args())
	if err != nil {
		return err
	}

	res := svc.Split(raw, opts.limits())
	c.reportParse(res)

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	for _, ce := range bulk.ClassifyAll(res.Entries) {
		fmt.Fprintf(tw, "%s\t%s\n", ce.Entry, ce.Type)
	}
	return tw.Flush()
}

func runCompare(ctx context.Context, c *cli, args []string) error {
	var opts common
	fs := c.flags("compare", &opts)
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(c.stderr, "usage: addrscope compare [flags] <a> <b>")
		return errUsage
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}

	result, err := svc.CompareEntries(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func runAnalyze(ctx context.Context, c *cli, args []string) error {
	var opts common
	fs := c.flags("analyze", &opts)
	if err := parse(fs, args); err != nil {
		return err
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}
	raw, err := c.input(&opts, fs.Args())
	if err != nil {
		return err
	}
	return c.analyze(ctx, svc, raw, opts.limits())
}

func (c *cli) analyze(ctx context.Context, svc *service.InspectorService, raw string, limits domain.SplitOptions) error {
	batch, err := svc.Inspect(ctx, raw, limits)
	if err != nil {
		return err
	}
	c.reportParse(batch.Parse)
	printBatch(c.stdout, batch)
	return nil
}

func printBatch(w io.Writer, batch *domain.Batch) {
	s := batch.Summary
	fmt.Fprintf(w, "%s entries: %s valid, %s invalid\n",
		humanize.Comma(int64(s.Total)), humanize.Comma(int64(s.Valid)), humanize.Comma(int64(s.Invalid)))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range domain.EntryTypes() {
		if n := s.ByType[t]; n > 0 {
			fmt.Fprintf(tw, "  %s\t%s\n", t, humanize.Comma(int64(n)))
		}
	}
	for _, p := range []domain.PrivacyClass{domain.PrivacyPrivate, domain.PrivacyPublic, domain.PrivacySpecial} {
		if n := s.ByPrivacy[p]; n > 0 {
			fmt.Fprintf(tw, "  %s\t%s\n", p, humanize.Comma(int64(n)))
		}
	}
	tw.Flush()

	a := batch.Analysis
	if a == nil {
		return
	}
	if len(a.Outliers) > 0 {
		fmt.Fprintln(w, "Outliers:")
		for _, o := range a.Outliers {
			fmt.Fprintf(w, "  #%d %s: %s\n", o.Index+1, o.Input, o.Reason)
		}
	}
	if len(a.Insights) > 0 {
		fmt.Fprintln(w, "Insights:")
		for _, in := range a.Insights {
			fmt.Fprintf(w, "  %s\n", in)
		}
	}
}

func runExport(ctx context.Context, c *cli, args []string) error {
	var opts common
	var format string
	var filters domain.Filters
	fs := c.flags("export", &opts)
	fs.StringVar(&format, "format", "csv", "output `format`: "+strings.Join(bulk.Formats(), ", "))
	fs.StringVar(&filters.TypeFilter, "type", "", "only export entries of this type")
	fs.StringVar(&filters.PrivacyFilter, "privacy", "", "only export Private, Public or Special entries")
	fs.StringVar(&filters.SearchText, "search", "", "only export entries containing this text")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := validation.ValidateExportFormat(format, bulk.Formats()); err != nil {
		return err
	}
	if errs := validation.ValidateFilters(filters); errs.HasErrors() {
		return errs
	}
	exporter, err := bulk.ExporterFor(format)
	if err != nil {
		return err
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}
	raw, err := c.input(&opts, fs.Args())
	if err != nil {
		return err
	}

	batch, err := svc.Inspect(ctx, raw, opts.limits())
	if err != nil {
		return err
	}
	c.reportParse(batch.Parse)
	return exporter.Export(bulk.FilterResults(batch.Results, filters), c.stdout)
}

func runWatch(ctx context.Context, c *cli, args []string) error {
	var opts common
	fs := c.flags("watch", &opts)
	if err := parse(fs, args); err != nil {
		return err
	}
	if opts.file == "" {
		fmt.Fprintln(c.stderr, "usage: addrscope watch -f <file> [flags]")
		return errUsage
	}
	svc, err := opts.service()
	if err != nil {
		return err
	}

	refresh := func() {
		raw, err := c.input(&opts, nil)
		if err != nil {
			fmt.Fprintf(c.stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintf(c.stdout, "== %s ==\n", opts.file)
		if err := c.analyze(ctx, svc, raw, opts.limits()); err != nil && ctx.Err() == nil {
			fmt.Fprintf(c.stderr, "error: %v\n", err)
		}
	}

	refresh()
	err = watch.New(opts.file, refresh).Watch(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
