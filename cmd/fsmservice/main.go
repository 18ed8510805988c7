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

// Package main is a service that hosts a crew of machines.
//
// Ops arrive as JSON via HTTP POST to /api or via websockets at
// /ws/api.  Optional schedules trigger events on a cron-like basis.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"

	"github.com/Comcast/fsm/crew"
	"github.com/Comcast/fsm/sched"
	"github.com/Comcast/fsm/storage"
	"github.com/Comcast/fsm/storage/bolt"
	"github.com/Comcast/fsm/util"

	"golang.org/x/net/netutil"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		httpPort   = flag.String("h", ":8080", "HTTP service port")
		httpDir    = flag.String("d", "", "optional directory that the HTTP service will serve")
		configDir  = flag.String("s", "configs", "configurations directory")
		storeFile  = flag.String("p", "", "optional BoltDB filename for more configurations")
		schedFile  = flag.String("t", "", "optional schedules file")
		websockets = flag.Bool("w", false, "start websockets service")
		maxConns   = flag.Int("m", 128, "maximum number of simultaneous connections")
		crewId     = flag.String("c", "crew", "crew id")
		verbose    = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := crew.NewDirProvider(*configDir)
	if err := dir.ReadConfigs(ctx); err != nil {
		log.Fatal(err)
	}
	providers := crew.Providers{dir}

	if *storeFile != "" {
		store, err := bolt.NewStore(*storeFile)
		if err != nil {
			log.Fatal(err)
		}
		if err = store.Open(ctx); err != nil {
			log.Fatal(err)
		}
		defer store.Close(ctx)
		providers = append(providers, &storage.Provider{Store: store})
	}

	s := NewService(ctx, *crewId, providers)

	if *schedFile != "" {
		schedules, err := sched.ReadSchedules(*schedFile)
		if err != nil {
			log.Fatal(err)
		}
		sc := sched.NewScheduler(s.Fire)
		for _, x := range schedules {
			if err = sc.Add(x); err != nil {
				log.Fatal(err)
			}
		}
		go func() {
			if err := sc.Run(ctx); err != nil {
				log.Printf("scheduler: %s", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api", s.OpHandler)
	mux.HandleFunc("/configs", ConfigsHandler(dir))
	if *websockets {
		mux.HandleFunc("/ws/api", s.WebSockets(ctx))
		mux.HandleFunc("/ws/ui", UI("localhost"+*httpPort))
		log.Printf("websockets at %s/ws/api", *httpPort)
	}
	if *httpDir != "" {
		fs := http.FileServer(http.Dir(*httpDir))
		mux.Handle("/f/", http.StripPrefix("/f", fs))
	}

	l, err := net.Listen("tcp", *httpPort)
	if err != nil {
		log.Fatal(err)
	}
	l = netutil.LimitListener(l, *maxConns)

	log.Printf("listening at %s", *httpPort)
	if err = http.Serve(l, mux); err != nil {
		log.Fatal(err)
	}
}
