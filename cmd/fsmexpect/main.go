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

// Package main runs session files against new machines.
//
// Usage: fsmexpect [-t TIMEOUT] [-v] SESSION.yaml ...
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Comcast/fsm/tools"
	"github.com/Comcast/fsm/util"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		timeout = flag.Duration("t", 10*time.Second, "main timeout")
		verbose = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if failed := run(ctx, flag.Args(), *verbose, os.Stdout); 0 < failed {
		os.Exit(1)
	}
}

// run runs each session file and returns the number that failed.
func run(ctx context.Context, filenames []string, verbose bool, out io.Writer) int {
	failed := 0
	for _, filename := range filenames {
		s, err := tools.ReadSession(filename)
		if err == nil {
			s.Verbose = s.Verbose || verbose
			err = s.Run(ctx)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", filename, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d steps)\n", filename, len(s.Steps))
	}
	return failed
}
