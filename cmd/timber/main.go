// Timber CLI - compiles and runs Timber programs
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/nlsfnr/timber/config"
	"github.com/nlsfnr/timber/pkg/codegen"
	"github.com/nlsfnr/timber/pkg/parser"
	"github.com/nlsfnr/timber/pkg/vm"
)

const (
	sourceExt = ".tmb"
	imageExt  = ".tmbi"
)

var log = commonlog.GetLogger("timber")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	listing := flag.Bool("S", false, "Print the compiled instruction listing instead of running")
	output := flag.String("o", "", "Write a program image instead of running")
	maxSteps := flag.Int("max-steps", 0, "Execution step limit (0 uses the default)")
	noConfig := flag.Bool("no-config", false, "Skip loading ~/"+config.FileName)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: timber [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles and runs a %s source file or a %s program image.\n\n", sourceExt, imageExt)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  timber prog%s                # Compile and run\n", sourceExt)
		fmt.Fprintf(os.Stderr, "  timber -S prog%s             # Show the instruction listing\n", sourceExt)
		fmt.Fprintf(os.Stderr, "  timber -o prog%s prog%s  # Compile to an image\n", imageExt, sourceExt)
		fmt.Fprintf(os.Stderr, "  timber prog%s               # Run a compiled image\n", imageExt)
		fmt.Fprintf(os.Stderr, "  timber -i                    # Start the REPL\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	cfg := config.Default()
	if !*noConfig {
		loaded, err := config.FindAndLoad()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			cfg = loaded
		}
	}
	if *maxSteps > 0 {
		cfg.Run.MaxSteps = *maxSteps
	}
	if cfg.Path != "" {
		log.Infof("loaded configuration from %s", cfg.Path)
	}

	args := flag.Args()
	if *interactive || len(args) == 0 {
		os.Exit(runREPL(cfg))
	}
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Error: expected a single file, got %d\n", len(args))
		flag.Usage()
		os.Exit(2)
	}
	path := args[0]

	prog, unit, err := loadProgram(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.Infof("loaded %s: %d instructions", path, len(prog))

	if *listing {
		if unit == nil {
			fmt.Fprintf(os.Stderr, "Error: %q is already compiled; listings come from source files\n", path)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("; labels: %s\n", strings.Join(unit.Labels(), " "))
		}
		fmt.Print(unit.Listing())
		return
	}

	if *output != "" {
		data, err := vm.EncodeImage(prog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote %s (%d bytes)", *output, len(data))
		return
	}

	exit, err := runProgram(cfg, prog, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(int(exit))
}

// loadProgram reads path and produces an executable program. Source files
// are compiled; image files are decoded. The unit is nil for images.
func loadProgram(path string) (vm.Program, *codegen.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, imageExt) || bytes.HasPrefix(data, vm.ImageMagic) {
		prog, err := vm.DecodeImage(data)
		if err != nil {
			return nil, nil, fmt.Errorf("loading %q: %w", path, err)
		}
		return prog, nil, nil
	}
	unit, err := compileSource(string(data))
	if err != nil {
		return nil, nil, fmt.Errorf("compiling %q: %w", path, err)
	}
	return unit.Program(), unit, nil
}

func compileSource(src string) (*codegen.Unit, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return codegen.Compile(prog)
}

func runProgram(cfg *config.Config, prog vm.Program, out io.Writer) (int64, error) {
	m := vm.NewMachine(out)
	m.SetMaxSteps(cfg.Run.MaxSteps)
	return m.Run(prog)
}

// runREPL starts an interactive read-eval-print loop. Each entry is a
// self-contained program: compiled, run, and discarded.
func runREPL(cfg *config.Config) int {
	fmt.Println("Timber REPL (Ctrl+D or :quit to exit, :help for commands)")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	appended := 0
	defer func() { saveHistory(histPath, appended, ln.WriteHistory) }()

	for {
		src, ok := readEntry(ln, cfg.Repl.Prompt, cfg.Repl.ContPrompt)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := replCommand(trimmed); quit {
				return 0
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		appended++

		unit, err := compileSource(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Compile error: %v\n", err)
			continue
		}
		exit, err := runProgram(cfg, unit.Program(), os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
			continue
		}
		if exit != 0 {
			fmt.Printf("= %d\n", exit)
		}
	}
}

// saveHistory writes the REPL history to path. A session that appended no
// entries leaves any existing history file untouched.
func saveHistory(path string, appended int, write func(io.Writer) (int, error)) {
	if appended == 0 {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	_, _ = write(f)
	_ = f.Close()
}

// readEntry collects lines until they parse as a complete program. A parse
// error other than incompleteness also ends the entry; compilation will
// report it.
func readEntry(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.Parse(src); err == nil || !parser.IsIncomplete(err) {
			return src, true
		}
	}
}

// replCommand handles ':' meta-commands, reporting whether to exit.
func replCommand(cmd string) bool {
	switch cmd {
	case ":quit", ":q":
		return true
	case ":help", ":h", ":?":
		fmt.Println("REPL commands:")
		fmt.Println("  :help, :h, :?   Show this help")
		fmt.Println("  :quit, :q       Exit the REPL")
		fmt.Println()
		fmt.Println("Anything else is compiled and run as a program.")
	default:
		fmt.Printf("Unknown command: %s (type :help for commands)\n", cmd)
	}
	return false
}
