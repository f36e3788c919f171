package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kyaoi/theoremnote/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file (default: user config dir)")
	tag := flag.String("tag", "", "Show only notes whose front matter tags contain TAG")
	export := flag.String("export", "", "Render the Markdown FILE to HTML on stdout and exit")
	imageDir := flag.String("image-dir", "", "Project-relative directory for ![[image]] embeds")
	debug := flag.Bool("debug", false, "Write logs to theoremnote.log")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [directory-or-file]\n\nFlags:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := app.Options{
		ConfigPath: *configPath,
		Tag:        *tag,
		Export:     *export,
		ImageDir:   *imageDir,
		Debug:      *debug,
	}
	if flag.NArg() == 1 {
		opts.Target = filepath.Clean(flag.Arg(0))
	}

	if err := app.Run(ctx, opts); err != nil {
		log.Fatal(err)
	}
}
