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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"sync"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/crew"
	"github.com/Comcast/fsm/sched"
	"github.com/Comcast/fsm/util"
)

// Report is what the firehose carries: a Stride along with the id of
// the machine that took it.
type Report struct {
	Machine string       `json:"machine"`
	Stride  *core.Stride `json:"stride"`
}

// Service exposes a crew over HTTP (and optionally websockets).
type Service struct {
	Crew     *crew.Crew
	Provider crew.ConfigProvider

	// firehose gets every Report.  It's drained to the websocket
	// clients (if any) by a goroutine started by NewService.
	firehose chan interface{}

	// conns is the set of websocket client queues.
	conns sync.Map
}

// NewService makes a Service for a new crew.
//
// Starts the goroutine that feeds the firehose to websocket clients.
// That goroutine stops when the context is done.
func NewService(ctx context.Context, cid string, p crew.ConfigProvider) *Service {
	s := &Service{
		Crew:     crew.NewCrew(cid),
		Provider: p,
		firehose: make(chan interface{}, 1024),
	}
	s.Crew.Observer = s.report
	go s.fanout(ctx)
	return s
}

// fanout gives each Report to every websocket client.
func (s *Service) fanout(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case x := <-s.firehose:
			s.conns.Range(func(k, v interface{}) bool {
				c := v.(chan interface{})
				select {
				case c <- x:
				default:
					log.Printf("%v firehose blocked", k)
				}
				return true
			})
		}
	}
}

// report is the crew's Observer.  It's called with a machine's lock
// held, so it never blocks.
func (s *Service) report(mid string, stride *core.Stride) {
	util.Logf("stride %s %s", mid, stride)
	select {
	case s.firehose <- &Report{Machine: mid, Stride: stride}:
	default:
		log.Printf("firehose blocked; dropping %s %s", mid, stride)
	}
}

// Process does an Op with the Service's crew and provider.
func (s *Service) Process(ctx context.Context, op *crew.Op) *crew.Result {
	return s.Crew.Process(ctx, op, s.Provider)
}

// Fire is a sched.Fire that triggers the schedule's event at its
// machine.
func (s *Service) Fire(ctx context.Context, sc *sched.Schedule) error {
	r := s.Process(ctx, &crew.Op{
		Op:    crew.OpTrigger,
		Id:    sc.Machine,
		Event: sc.Event,
		Tag:   sc.Id,
	})
	if r.Error != "" {
		return fmt.Errorf("schedule %s: %s", sc.Id, r.Error)
	}
	return nil
}

// OpHandler is an http.Handler that reads an Op from the request body
// and writes the Result.
//
// Example:
//
//	curl -d '{"op":"trigger","id":"m1","event":"eat"}' localhost:8080/api
func (s *Service) OpHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST an op", http.StatusMethodNotAllowed)
		return
	}

	bs, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var op crew.Op
	if err = json.Unmarshal(bs, &op); err != nil {
		http.Error(w, fmt.Sprintf("can't parse op: %v", err), http.StatusBadRequest)
		return
	}

	result := s.Process(r.Context(), &op)

	js, err := json.Marshal(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Error != "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	w.Write(js)
	w.Write([]byte("\n"))
}

// ConfigsHandler lists the configurations available from a
// DirProvider.
func ConfigsHandler(p *crew.DirProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if err := p.ReadConfigs(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		js, err := json.Marshal(p.Names())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(js)
	}
}
