// Copyright 2024 The eoestruct Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command eoestruct reads an eoejson template document, builds and
// expands it against a small set of demonstration variables, and writes
// the resulting JSON to stdout. It exists to exercise the builder,
// expander and JSON bridge end to end; it is not meant as a general
// templating tool.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	eoestruct "eoestruct.dev/go/eoestruct"
	"eoestruct.dev/go/eoestruct/encoding/eoejson"
	"eoestruct.dev/go/eoestruct/internal/column"
)

func main() {
	debug := flag.Bool("debug", false, "dump the built document instead of expanding it")
	input := flag.String("in", "", "path to an eoejson template document (default: a built-in demo)")
	flag.Parse()

	if err := run(*debug, *input, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "eoestruct:", err)
		os.Exit(1)
	}
}

func run(debug bool, inputPath string, w io.Writer) error {
	reg := eoejson.NewVarRegistry()
	names := eoestruct.NewVar(eoestruct.StringVar(column.Each([]string{"ada", "grace", "margaret"})))
	scores := eoestruct.NewVar(eoestruct.NumberVar(column.Each([]float64{98, 87, 91})))
	active := eoestruct.NewVar(eoestruct.BoolVar(column.Each([]bool{true, false, true})))
	reg.Declare("names", names)
	reg.Declare("scores", scores)
	reg.Declare("active", active)

	data := []byte(demoDocument)
	if inputPath != "" {
		raw, err := os.ReadFile(inputPath)
		if err != nil {
			return err
		}
		data = raw
	}

	tmpl, err := eoejson.FromJSON(data, reg)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	built, err := eoestruct.Build(tmpl, nil)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	if debug {
		return eoestruct.Dump(w, built)
	}
	if err := eoejson.ToJSON(w, built, nil); err != nil {
		return fmt.Errorf("expand: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

const demoDocument = `
{
  "$all": ["names", "scores", "active"],
  "$body": {
    "$if": "active",
    "$then": {
      "name": {"$var": "names"},
      "score": {"$var": "scores"}
    }
  }
}
`
