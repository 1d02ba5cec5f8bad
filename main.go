package main

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/hesusruiz/hamlet/extfilter"
	"github.com/hesusruiz/hamlet/haml"
	"github.com/urfave/cli/v2"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

// outputFileNameFor returns the name of the input file with extension .html
func outputFileNameFor(inputFileName string) string {
	ext := path.Ext(inputFileName)
	if len(ext) == 0 {
		return inputFileName + ".html"
	}
	return strings.TrimSuffix(inputFileName, ext) + ".html"
}

// compilerOptions builds the compiler configuration from the config file and the command line.
// Command line flags override the values in the config file.
func compilerOptions(c *cli.Context, sugar *zap.SugaredLogger) ([]haml.Option, error) {
	opts := []haml.Option{haml.WithLogger(sugar)}

	if configFile := c.String("config"); len(configFile) > 0 {
		fileOpts, err := haml.LoadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	if wrapper := c.String("attr-wrapper"); len(wrapper) > 0 {
		if len(wrapper) != 1 {
			return nil, fmt.Errorf("invalid attribute wrapper %q", wrapper)
		}
		opts = append(opts, haml.WithAttrWrapper(wrapper[0]))
	}

	if c.Bool("no-django-inline") {
		opts = append(opts, haml.WithDjangoInlineStyle(false))
	}

	opts = append(opts, extfilter.Renderers(c.String("style"))...)

	// Running code from the template is only enabled on request
	if c.Bool("allow-exec") {
		opts = append(opts, executorOption(c.String("python"), sugar))
	}

	return opts, nil
}

// executorOption enables :python filters with the given interpreter.
func executorOption(interpreter string, sugar *zap.SugaredLogger) haml.Option {
	python := &extfilter.Python{Interpreter: interpreter}
	sugar.Warnw("code execution enabled for :python filters", "interpreter", interpreter)
	if !python.Available() {
		// Compilation still works for templates without :python filters
		sugar.Warnw("interpreter not found, :python filters will fail", "interpreter", interpreter)
	}
	return haml.WithExecutor(python)
}

// compileFile compiles the input file, writing the result unless dryrun is true.
func compileFile(compiler *haml.Compiler, inputFileName string, outputFileName string, dryrun bool) error {
	src, err := os.ReadFile(inputFileName)
	if err != nil {
		return err
	}

	html, err := compiler.Process(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", inputFileName, err)
	}

	// Do nothing if flag dryrun was specified
	if dryrun {
		return nil
	}

	return os.WriteFile(outputFileName, []byte(html), 0664)
}

// processWatch compiles the input file whenever its contents change.
func processWatch(compiler *haml.Compiler, inputFileName string, outputFileName string, sugar *zap.SugaredLogger) error {

	var oldHash [32]byte

	// Loop forever
	for {

		src, err := os.ReadFile(inputFileName)
		if err != nil {
			return err
		}

		// Process the file only if the contents have changed
		if currentHash := blake3.Sum256(src); currentHash != oldHash {
			oldHash = currentHash
			sugar.Infow("processing", "input", inputFileName, "output", outputFileName)
			if err := compileFile(compiler, inputFileName, outputFileName, false); err != nil {
				// Keep watching, the user will fix the error
				sugar.Errorw("compiling", "error", err)
			}
		}

		// Check again in one second
		time.Sleep(1 * time.Second)

	}
}

// process is the main entry point of the program
func process(c *cli.Context) error {

	var z *zap.Logger
	var err error

	// Setup the logging system
	if c.Bool("debug") {
		z, err = zap.NewDevelopment()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}

	sugar := z.Sugar()
	defer sugar.Sync()

	// Get the input file name
	if !c.Args().Present() {
		return cli.Exit("no input file provided", 1)
	}
	inputFileName := c.Args().First()

	// Generate the output file name
	outputFileName := c.String("output")
	if len(outputFileName) == 0 {
		outputFileName = outputFileNameFor(inputFileName)
	}

	opts, err := compilerOptions(c, sugar)
	if err != nil {
		return err
	}

	compiler, err := haml.New(opts...)
	if err != nil {
		return err
	}

	sugar.Debugw("compiler ready",
		"django_inline_style", compiler.DjangoInlineStyle(),
		"attr_wrapper", string(compiler.AttrWrapper()),
	)

	dryrun := c.Bool("dryrun")

	// Print a message
	if !dryrun {
		fmt.Printf("processing %v and generating %v\n", inputFileName, outputFileName)
	} else {
		fmt.Printf("dry run: processing %v without writing output\n", inputFileName)
	}

	// This is useful for development.
	// If the user specified to watch, loop forever processing the input file when modified
	if c.Bool("watch") {
		return processWatch(compiler, inputFileName, outputFileName, sugar)
	}

	return compileFile(compiler, inputFileName, outputFileName, dryrun)
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "hamlet",
		Version:   "v0.1.0",
		Usage:     "compile HAML-like documents into Django templates",
		UsageText: "hamlet [options] INPUT_FILE",
		Action:    process,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write the template to `FILE` (default is input file name with extension .html)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "read compiler options from the YAML `FILE`",
			},
			&cli.StringFlag{
				Name:  "attr-wrapper",
				Usage: "quote `CHAR` around attribute values, ' or \"",
			},
			&cli.BoolFlag{
				Name:  "no-django-inline",
				Usage: "do not expand ={expr} markers",
			},
			&cli.BoolFlag{
				Name:  "allow-exec",
				Usage: "run :python filters with an external interpreter (UNSAFE for untrusted input)",
			},
			&cli.StringFlag{
				Name:  "python",
				Value: extfilter.DefaultPython,
				Usage: "the `INTERPRETER` for :python filters",
			},
			&cli.StringFlag{
				Name:  "style",
				Value: extfilter.DefaultStyle,
				Usage: "the chroma `STYLE` for :highlight filters",
			},
			&cli.BoolFlag{
				Name:    "dryrun",
				Aliases: []string{"n"},
				Usage:   "do not generate output file, just process input file",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "run in debug mode",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "watch the file for changes",
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
