// maskit formats values from the command line or stdin.
//
//	maskit -mask "(##) ####-####" 1187654321
//	maskit -masks "###.###.###-##,##.###.###/####-##" < ids.txt
//	maskit -preset phone-br -raw "(11) 98765-4321"
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vortex-fintech/go-mask/logger"
	"github.com/vortex-fintech/go-mask/mask"
	"github.com/vortex-fintech/go-mask/preset"
	"github.com/vortex-fintech/go-mask/redact"
	"github.com/vortex-fintech/go-mask/textutil"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	maxLineBytes = 1 << 20
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// maskList collects -masks values; each occurrence may hold several
// comma-separated masks.
type maskList []string

func (m *maskList) String() string { return strings.Join(*m, ",") }

func (m *maskList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*m = append(*m, part)
		}
	}
	return nil
}

type options struct {
	mask        string
	masks       maskList
	preset      string
	presetsFile string
	raw         bool
	normalize   bool
	redact      bool
	list        bool
	verbose     bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := flag.NewFlagSet("maskit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mask, "mask", "", "single mask, e.g. \"(##) ####-####\"")
	fs.Var(&opts.masks, "masks", "comma-separated mask set chosen by value length (repeatable)")
	fs.StringVar(&opts.preset, "preset", "", "named preset, see -list")
	fs.StringVar(&opts.presetsFile, "presets-file", "", "YAML file with extra presets")
	fs.BoolVar(&opts.raw, "raw", false, "print only accepted characters, without literals")
	fs.BoolVar(&opts.normalize, "normalize", false, "fold full-width and compatibility characters first")
	fs.BoolVar(&opts.redact, "redact", false, "hide all but the last accepted characters")
	fs.BoolVar(&opts.list, "list", false, "list presets and exit")
	fs.BoolVar(&opts.verbose, "v", false, "log diagnostics to stderr")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	env := "production"
	if opts.verbose {
		env = "debug"
	}
	log, err := logger.New("maskit", env)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}
	defer log.SafeSync()

	reg := preset.Default()
	if opts.presetsFile != "" {
		n, err := reg.LoadFile(opts.presetsFile)
		if err != nil {
			fmt.Fprintf(stderr, "maskit: %v\n", err)
			return exitError
		}
		log.Debugw("presets loaded", "file", opts.presetsFile, "count", n)
	}

	if opts.list {
		for _, p := range reg.All() {
			fmt.Fprintf(stdout, "%-12s %s\t%s\n", p.Name, strings.Join(p.Masks, " | "), p.Description)
		}
		return exitOK
	}

	f, err := buildFormatter(opts, reg)
	if err != nil {
		fmt.Fprintf(stderr, "maskit: %v\n", err)
		return exitUsage
	}
	render := f.Value
	if opts.redact {
		render = func(v string) string {
			if opts.normalize {
				v = textutil.FoldInput(v)
			}
			return redact.Formatted(v, f.Pattern, f.Tokens, -1)
		}
	}

	out := bufio.NewWriter(stdout)
	defer out.Flush()

	if values := fs.Args(); len(values) > 0 {
		for _, v := range values {
			fmt.Fprintln(out, render(v))
		}
		return exitOK
	}

	sc := bufio.NewScanner(stdin)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lines := 0
	for sc.Scan() {
		fmt.Fprintln(out, render(strings.TrimRight(sc.Text(), "\r")))
		lines++
	}
	if err := sc.Err(); err != nil {
		_ = out.Flush()
		fmt.Fprintf(stderr, "maskit: read stdin: %v\n", err)
		return exitError
	}
	log.Debugw("stdin formatted", "lines", lines)
	return exitOK
}

func buildFormatter(opts options, reg *preset.Registry) (mask.Formatter, error) {
	set := 0
	for _, on := range []bool{opts.mask != "", len(opts.masks) > 0, opts.preset != ""} {
		if on {
			set++
		}
	}
	switch {
	case set > 1:
		return mask.Formatter{}, fmt.Errorf("use only one of -mask, -masks and -preset")
	case set == 0:
		return mask.Formatter{}, fmt.Errorf("one of -mask, -masks or -preset is required")
	}

	var f mask.Formatter
	switch {
	case opts.mask != "":
		f.Pattern = mask.Single(opts.mask)
	case len(opts.masks) > 0:
		f.Pattern = mask.Dynamic(opts.masks...)
	default:
		p, err := reg.Get(opts.preset)
		if err != nil {
			return mask.Formatter{}, fmt.Errorf("preset %q not found", opts.preset)
		}
		f = p.Formatter(nil)
	}
	f.Raw = f.Raw || opts.raw
	f.Normalize = opts.normalize
	return f, nil
}
