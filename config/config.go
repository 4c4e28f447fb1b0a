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

// Package config holds the flat, JSON-tagged configuration struct shared
// by the gocommd server and gocomm-client demo binaries, and the
// override-from-file helper both of them call when a -c flag is given.
package config

import (
	"encoding/json"
	"os"
)

// Server is the configuration for the gocommd demo server.
type Server struct {
	Listen         string `json:"listen"`
	Threads        int    `json:"threads"`
	Processor      string `json:"processor"` // "echo" or "uppercase"
	Compress       bool   `json:"compress"`
	MaxContentSize int    `json:"maxcontentsize"`
	Log            string `json:"log"`
	Quiet          bool   `json:"quiet"`
	Verbose        bool   `json:"verbose"`
}

// Client is the configuration for the gocomm-client demo binary.
type Client struct {
	Remote   string `json:"remote"`
	Compress bool   `json:"compress"`
	Log      string `json:"log"`
	Verbose  bool   `json:"verbose"`
}

// ParseJSONFile decodes the JSON document at path into cfg, overriding
// whatever CLI flags already populated.
func ParseJSONFile(path string, cfg any) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cfg)
}
