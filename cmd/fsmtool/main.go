/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is a tool for working with machine configurations.
//
// A configuration is read from stdin, and output goes to stdout.
//
//	fsmtool html [-css FILE,...] < appetite.yaml > appetite.html
//	fsmtool yamltojson [-p] < appetite.yaml
//	fsmtool jsontoyaml < appetite.json
//	fsmtool check < appetite.yaml
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/tools"

	"github.com/jsccast/yaml"
	yaml2 "gopkg.in/yaml.v2"
)

// Problems is returned by "check" when the configuration has errors.
var Problems = errors.New("configuration has problems")

func main() {
	if len(os.Args) < 2 {
		Usage()
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)

	var (
		pretty = fs.Bool("p", false, "pretty-print")
		css    = fs.String("css", "", "comma-separated CSS files")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	bs, err := ioutil.ReadAll(in)
	if err != nil {
		return err
	}

	var c *core.Config
	if cmd == "jsontoyaml" {
		c = &core.Config{}
		if err = json.Unmarshal(bs, c); err != nil {
			return err
		}
	} else if c, err = core.ParseConfig(bs); err != nil {
		return err
	}

	switch cmd {
	case "html":
		var cssFiles []string
		if *css != "" {
			cssFiles = strings.Split(*css, ",")
		}
		return tools.RenderConfigPage(c, out, cssFiles)

	case "yamltojson":
		if *pretty {
			// MarshalIndent reformats what MarshalJSON
			// produces, so the state order survives.
			bs, err = json.MarshalIndent(c, "", "  ")
		} else {
			bs, err = json.Marshal(c)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", bs)
		return err

	case "jsontoyaml":
		if bs, err = yaml2.Marshal(c); err != nil {
			return err
		}
		_, err = out.Write(bs)
		return err

	case "check":
		a, err := tools.Analyze(c)
		if err != nil {
			return err
		}
		if bs, err = yaml.Marshal(a); err != nil {
			return err
		}
		if _, err = out.Write(bs); err != nil {
			return err
		}
		if 0 < len(a.Errors) {
			return Problems
		}
		return nil

	default:
		return fmt.Errorf("unknown subcommand %q", cmd)
	}
}

func Usage() {
	fmt.Printf(`Subcommands (configuration from stdin):

  html [-css FILES]     Render the configuration as an HTML page
  yamltojson [-p]       Convert a YAML configuration to JSON
  jsontoyaml            Convert a JSON configuration to YAML
  check                 Report likely mistakes
`)
}
