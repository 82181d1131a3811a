package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grindlemire/go-isml/internal/config"
	"github.com/grindlemire/go-isml/internal/log"
)

// options are the flags shared by compile and check.
type options struct {
	verbose         bool
	logPath         string
	configPath      string
	contentEncoding string
	sourceEncoding  string
	encodings       config.EncodingFlags
}

func (o *options) register(fs *flag.FlagSet) {
	o.encodings = config.EncodingFlags{}
	fs.BoolVar(&o.verbose, "v", false, "Verbose output")
	fs.BoolVar(&o.verbose, "verbose", false, "Verbose output")
	fs.StringVar(&o.logPath, "log", "", "Path to log file for debugging")
	fs.StringVar(&o.configPath, "config", "", "Properties file with charset settings")
	fs.StringVar(&o.contentEncoding, "contentencoding", "", "Default output charset")
	fs.StringVar(&o.sourceEncoding, "sourceencoding", "", "Charset of templates that declare none")
	fs.Var(o.encodings, "encoding", "Output charset for a mime type, as mime=charset (repeatable)")
}

// config builds the configuration: defaults, then the properties file, then
// flags.
func (o *options) config() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if o.contentEncoding != "" {
		cfg.ContentEncoding = o.contentEncoding
	}
	if o.sourceEncoding != "" {
		cfg.SourceEncoding = o.sourceEncoding
	}
	for mime, cs := range o.encodings {
		cfg.SetEncoding(mime, cs)
	}

	log.Debug("content encoding %s, source encoding %s", cfg.ContentEncoding, cfg.PlatformEncoding())
	for _, mime := range cfg.MimeTypes() {
		log.Debug("encoding for %s: %s", mime, cfg.Encodings[mime])
	}
	return cfg, nil
}

// setupLog opens the log sink. -log appends to a file and -v echoes to
// stdout; either one enables debug messages. The returned func closes the
// file.
func (o *options) setupLog() (func(), error) {
	var sinks []io.Writer
	closeLog := func() {}
	if o.logPath != "" {
		f, err := os.OpenFile(o.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		sinks = append(sinks, f)
		closeLog = func() {
			log.SetOutput(nil)
			f.Close()
		}
	}
	if o.verbose {
		sinks = append(sinks, os.Stdout)
	}

	switch len(sinks) {
	case 0:
		log.SetOutput(nil)
	case 1:
		log.SetOutput(sinks[0])
	default:
		log.SetOutput(io.MultiWriter(sinks...))
	}
	if o.logPath != "" || o.verbose {
		log.SetLevel(log.LevelDebug)
	} else {
		log.SetLevel(log.LevelInfo)
	}
	return closeLog, nil
}
