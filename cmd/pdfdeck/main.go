// Command pdfdeck performs structural PDF operations: merge, page removal,
// extraction, reordering, splitting, and lossy compression.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wudi/pdfdeck/compress"
	"github.com/wudi/pdfdeck/config"
	"github.com/wudi/pdfdeck/observability"
	"github.com/wudi/pdfdeck/render"
	"github.com/wudi/pdfdeck/service"
	"github.com/wudi/pdfdeck/validate"
)

// ingestLimit is the hard size ceiling enforced before a file ever reaches
// the core.
const ingestLimit = 100 << 20

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "pdfdeck: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: pdfdeck <command> [flags] <input.pdf>...

Commands:
  merge      concatenate two or more PDFs in the given order
  remove     remove the listed pages from a PDF
  extract    extract the listed pages into a new PDF
  reorder    apply a full page permutation
  split      split a PDF after the listed pages
  compress   reduce file size at a chosen level
  validate   run the validation gate and report findings
`)
}

type options struct {
	outDir  string
	cfgPath string
	verbose bool
	pages   string
	level   string
	docSort bool
}

func parseFlags(cmd string, args []string) (options, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.outDir, "out", ".", "Directory for result files")
	fs.StringVar(&opts.cfgPath, "config", "", "TOML file overriding tunables")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	switch cmd {
	case "remove", "extract", "reorder", "split":
		fs.StringVar(&opts.pages, "pages", "", "Comma-separated 1-based page numbers")
	case "compress":
		fs.StringVar(&opts.level, "level", "medium", "Compression level: low, medium, high, extreme")
	}
	if cmd == "extract" {
		fs.BoolVar(&opts.docSort, "doc-order", false, "Extract in document order instead of the given order")
	}
	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	return opts, fs.Args(), nil
}

func run(cmd string, args []string) error {
	opts, inputs, err := parseFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if opts.cfgPath != "" {
		cfg, err = config.Load(opts.cfgPath)
		if err != nil {
			return err
		}
	}

	logger := newLogger(opts.verbose)
	render.Configure(render.Options{BaseDPI: cfg.Compress.BaseDPI})

	svc := service.New(service.Options{
		Constraints: cfg.Limits.Constraints(),
		Params:      cfg.Compress.Params(),
		Rasterizer:  render.NewFitz(),
		Logger:      logger,
	})
	sink := &dirSink{dir: opts.outDir}
	ctx := context.Background()

	switch cmd {
	case "merge":
		if len(inputs) < 2 {
			return fmt.Errorf("merge needs at least two input files")
		}
		files, err := ingestAll(inputs)
		if err != nil {
			return err
		}
		res, err := svc.Merge(ctx, files, sink)
		return report(res, err)
	case "remove":
		return oneFileOp(opts, inputs, func(f validate.File, pages []int) (*service.Result, error) {
			return svc.RemovePages(ctx, f, pages, sink)
		})
	case "extract":
		return oneFileOp(opts, inputs, func(f validate.File, pages []int) (*service.Result, error) {
			if opts.docSort {
				pages = sortedCopy(pages)
			}
			return svc.ExtractPages(ctx, f, pages, sink)
		})
	case "reorder":
		return oneFileOp(opts, inputs, func(f validate.File, pages []int) (*service.Result, error) {
			return svc.Reorder(ctx, f, pages, sink)
		})
	case "split":
		return oneFileOp(opts, inputs, func(f validate.File, pages []int) (*service.Result, error) {
			return svc.Split(ctx, f, pages, sink)
		})
	case "compress":
		if len(inputs) != 1 {
			return fmt.Errorf("compress takes exactly one input file")
		}
		level, err := compress.ParseLevel(opts.level)
		if err != nil {
			return err
		}
		f, err := ingest(inputs[0])
		if err != nil {
			return err
		}
		res, err := svc.Compress(ctx, f, level, sink)
		return report(res, err)
	case "validate":
		files, err := ingestAll(inputs)
		if err != nil {
			return err
		}
		gate := validate.CheckAll(ctx, files, cfg.Limits.Constraints())
		for _, w := range gate.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		for _, e := range gate.Errors {
			fmt.Printf("error: %s\n", e)
		}
		if !gate.Valid {
			return fmt.Errorf("validation failed")
		}
		fmt.Println("ok")
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func oneFileOp(opts options, inputs []string,
	op func(validate.File, []int) (*service.Result, error)) error {
	if len(inputs) != 1 {
		return fmt.Errorf("this command takes exactly one input file")
	}
	pages, err := parsePageList(opts.pages)
	if err != nil {
		return err
	}
	f, err := ingest(inputs[0])
	if err != nil {
		return err
	}
	res, err := op(f, pages)
	return report(res, err)
}

func report(res *service.Result, err error) error {
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, name := range res.OutputNames {
		fmt.Printf("wrote %s\n", name)
	}
	if res.Strategy != "" {
		fmt.Printf("strategy %s, reduction %.1f%%\n", res.Strategy, res.Reduction)
	}
	return nil
}

// ingest reads one user-selected file, enforcing the accepted-type filter
// and the size ceiling before the core sees the bytes.
func ingest(path string) (validate.File, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return validate.File{}, fmt.Errorf("%s: only application/pdf input is accepted", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return validate.File{}, err
	}
	if info.Size() > ingestLimit {
		return validate.File{}, fmt.Errorf("%s: exceeds the %d MB ingestion limit", path, ingestLimit>>20)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return validate.File{}, err
	}
	return validate.File{Name: filepath.Base(path), Size: int64(len(data)), Data: data}, nil
}

func ingestAll(paths []string) ([]validate.File, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	files := make([]validate.File, 0, len(paths))
	for _, p := range paths {
		f, err := ingest(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// parsePageList turns "1,3,5" into 0-based page indices.
func parsePageList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	pages := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad page number %q", p)
		}
		if n < 1 {
			return nil, fmt.Errorf("page numbers are 1-based, got %d", n)
		}
		pages = append(pages, n-1)
	}
	return pages, nil
}

func sortedCopy(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	return out
}

func newLogger(verbose bool) observability.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.WarnLevel)
	}
	return observability.NewLogrus(l)
}
