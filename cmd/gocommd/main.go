// The MIT License (MIT)
//
// Copyright (c) 2024 gocomm contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Command gocommd hosts a gocomm Listener: it binds an address, accepts
// many concurrent clients, and dispatches each to a bounded worker pool
// running a pluggable Processor.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/jfawcett/gocomm/config"
	"github.com/jfawcett/gocomm/listener"
	"github.com/jfawcett/gocomm/logger"
	"github.com/jfawcett/gocomm/processor"
)

// VERSION is populated via build flags when packaging official binaries.
var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "gocommd"
	app.Usage = "message-oriented TCP listener"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "listen,l",
			Value: ":8080",
			Usage: "listen address, eg: \"0.0.0.0:8080\"",
		},
		cli.IntFlag{
			Name:  "threads,t",
			Value: 8,
			Usage: "fixed worker pool size",
		},
		cli.StringFlag{
			Name:  "processor",
			Value: "echo",
			Usage: "echo, uppercase",
		},
		cli.BoolFlag{
			Name:  "compress",
			Usage: "wrap accepted sockets in a snappy-compressed transport",
		},
		cli.IntFlag{
			Name:  "maxcontentsize",
			Value: 0,
			Usage: "maximum content_size accepted per frame, 0 for the library default",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
		},
		cli.BoolFlag{
			Name:  "quiet",
			Usage: "suppress all listener log lines, including -verbose frame traces",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "trace every frame's type and length",
		},
		cli.StringFlag{
			Name:  "c",
			Value: "",
			Usage: "config from a JSON file, overriding the flags above",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfg := config.Server{
		Listen:         c.String("listen"),
		Threads:        c.Int("threads"),
		Processor:      c.String("processor"),
		Compress:       c.Bool("compress"),
		MaxContentSize: c.Int("maxcontentsize"),
		Log:            c.String("log"),
		Quiet:          c.Bool("quiet"),
		Verbose:        c.Bool("verbose"),
	}

	if path := c.String("c"); path != "" {
		if err := config.ParseJSONFile(path, &cfg); err != nil {
			return err
		}
	}

	if cfg.Log != "" {
		f, err := os.OpenFile(cfg.Log, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	}

	var proc processor.Processor
	switch cfg.Processor {
	case "uppercase":
		proc = processor.Uppercase
	case "echo", "":
		proc = processor.Echo
	default:
		color.Red("unknown processor %q, falling back to echo", cfg.Processor)
		proc = processor.Echo
	}

	std := logger.NewStandard(cfg.Verbose)
	var lg logger.Logger = std
	if cfg.Quiet {
		lg = logger.Mute
	}

	log.Println("version:", VERSION)
	log.Println("listening on:", cfg.Listen)
	log.Println("threads:", cfg.Threads)
	log.Println("processor:", cfg.Processor)
	log.Println("compress:", cfg.Compress)

	l := listener.New(cfg.Threads, listener.Config{
		Processor:      proc,
		Logger:         lg,
		Compress:       cfg.Compress,
		MaxContentSize: uint64(cfg.MaxContentSize),
	})
	if err := l.Start(cfg.Listen); err != nil {
		return err
	}
	fmt.Println("gocommd listening on", l.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("shutting down")
	l.Stop()
	l.Wait()
	return nil
}
