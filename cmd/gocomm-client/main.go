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

// Command gocomm-client is a demonstration Connector driver: it posts a
// handful of FLUSH messages to a gocommd server and prints whatever
// REPLY messages come back.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/jfawcett/gocomm/config"
	"github.com/jfawcett/gocomm/connector"
	"github.com/jfawcett/gocomm/logger"
	"github.com/jfawcett/gocomm/message"
)

var VERSION = "SELFBUILD"

func main() {
	if VERSION == "SELFBUILD" {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	app := cli.NewApp()
	app.Name = "gocomm-client"
	app.Usage = "demonstration Connector driver"
	app.Version = VERSION
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "remote,r",
			Value: "127.0.0.1:8080",
			Usage: "server address to connect to",
		},
		cli.BoolFlag{
			Name:  "compress",
			Usage: "wrap the socket in a snappy-compressed transport",
		},
		cli.StringFlag{
			Name:  "log",
			Value: "",
			Usage: "specify a log file to output, default goes to stderr",
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
	cfg := config.Client{
		Remote:   c.String("remote"),
		Compress: c.Bool("compress"),
		Log:      c.String("log"),
		Verbose:  c.Bool("verbose"),
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

	color.Cyan("connecting to %s", cfg.Remote)
	conn, err := connector.New(cfg.Remote, connector.Config{
		Compress:    cfg.Compress,
		Logger:      logger.NewStandard(cfg.Verbose),
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	for i, body := range []string{"hello", "from", "gocomm-client"} {
		conn.Post(message.New(message.Flush, []byte(body)))
		reply, err := conn.Get()
		if err != nil {
			return err
		}
		fmt.Printf("[%d] sent %q, got %s %q\n", i, body, reply.Type, reply.Content)
	}

	conn.Post(message.New(message.End, nil))
	return nil
}
