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
	"log"
	"strings"

	"github.com/Comcast/fsm/core"
	"github.com/Comcast/fsm/crew"
	"github.com/Comcast/fsm/util"
)

// Bridge processes Ops that arrive as MQTT payloads.
type Bridge struct {
	Crew     *crew.Crew
	Provider crew.ConfigProvider

	ResultTopic string
	ResultQoS   byte

	// StrideTopic, if not empty, gets every Stride of every
	// machine.
	StrideTopic string
	StrideQoS   byte

	// Publish sends a message to the broker.
	Publish func(topic string, qos byte, payload []byte) error
}

func NewBridge(c *crew.Crew, p crew.ConfigProvider) *Bridge {
	b := &Bridge{
		Crew:     c,
		Provider: p,
	}
	c.Observer = b.stride
	return b
}

func (b *Bridge) publish(topic string, qos byte, x interface{}) {
	js, err := json.Marshal(x)
	if err != nil {
		log.Printf("Failed to marshal %#v: %v", x, err)
		return
	}
	if err = b.Publish(topic, qos, js); err != nil {
		log.Printf("Publish error: %s", err)
	}
}

func (b *Bridge) stride(mid string, s *core.Stride) {
	if b.StrideTopic == "" {
		return
	}
	b.publish(b.StrideTopic, b.StrideQoS, map[string]interface{}{
		"machine": mid,
		"stride":  s,
	})
}

// Handle processes a payload, which should be an Op in JSON, and
// publishes the Result.
func (b *Bridge) Handle(ctx context.Context, topic string, payload []byte) {
	util.Logf("incoming: %s %s", topic, payload)

	var (
		op     crew.Op
		result *crew.Result
	)
	if err := json.Unmarshal(payload, &op); err != nil {
		result = &crew.Result{
			Error: fmt.Sprintf("can't parse %q: %v", payload, err),
		}
	} else {
		result = b.Crew.Process(ctx, &op, b.Provider)
	}

	b.publish(b.ResultTopic, b.ResultQoS, result)
}

// parseTopic can extract QoS from a topic name of the form TOPIC:QOS.
func parseTopic(s string) (string, byte) {
	var topic string
	var qos byte
	if _, err := fmt.Sscanf(strings.Replace(s, ":", " ", 1), "%s %d", &topic, &qos); err == nil {
		return topic, qos
	}
	return s, 0
}
