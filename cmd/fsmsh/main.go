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

// Package main is a command-line shell for poking at a single
// machine.
//
// Type "help" for the commands.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/Comcast/fsm/storage/bolt"
	"github.com/Comcast/fsm/util"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		configFile = flag.String("c", "", "optional configuration file to load")
		storeFile  = flag.String("p", "", "optional BoltDB filename for saved configurations")
		echo       = flag.Bool("e", false, "echo input")
		verbose    = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh := NewShell(os.Stdout)
	sh.Echo = *echo

	if *storeFile != "" {
		s, err := bolt.NewStore(*storeFile)
		if err != nil {
			log.Fatal(err)
		}
		if err = s.Open(ctx); err != nil {
			log.Fatal(err)
		}
		defer s.Close(ctx)
		sh.Store = s
	}

	if *configFile != "" {
		if err := sh.Do(ctx, "load "+*configFile); err != nil {
			log.Fatal(err)
		}
	}

	if err := sh.Run(ctx, os.Stdin); err != nil {
		log.Fatal(err)
	}
}
