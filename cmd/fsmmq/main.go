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

// Package main bridges an MQTT broker and a crew of machines.
//
// Ops (as JSON) published to the op topic are processed, and their
// Results are published to the result topic.  Strides are published
// to the stride topic (if given).
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/Comcast/fsm/crew"
	"github.com/Comcast/fsm/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.LUTC)
}

func main() {

	var (
		// Follow mosquitto_sub command line args where we can.

		broker    = flag.String("h", "tcp://localhost", "Broker hostname")
		port      = flag.Int("p", 1883, "Broker port")
		clientId  = flag.String("i", "fsmmq", "Client id")
		keepAlive = flag.Int("k", 10, "Keep-alive in seconds")
		userName  = flag.String("u", "", "Username")
		password  = flag.String("P", "", "Password")
		reconnect = flag.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean     = flag.Bool("c", true, "Clean session")
		quiesce   = flag.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")
		insecure  = flag.Bool("insecure", false, "Skip broker cert checking")

		opTopic     = flag.String("t", "fsm/op", "topic for incoming ops (TOPIC[:QOS])")
		resultTopic = flag.String("r", "fsm/result", "topic for results (TOPIC[:QOS])")
		strideTopic = flag.String("o", "", "optional topic for strides (TOPIC[:QOS])")

		configDir = flag.String("s", "configs", "configurations directory")
		verbose   = flag.Bool("v", false, "verbose logging")
	)

	flag.Parse()

	util.Logging = *verbose

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := crew.NewDirProvider(*configDir)
	if err := p.ReadConfigs(ctx); err != nil {
		log.Fatal(err)
	}

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error ", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))
	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean
	opts.SetTLSConfig(&tls.Config{
		InsecureSkipVerify: *insecure,
	})
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	}

	b := NewBridge(crew.NewCrew(*clientId), p)
	b.ResultTopic, b.ResultQoS = parseTopic(*resultTopic)
	if *strideTopic != "" {
		b.StrideTopic, b.StrideQoS = parseTopic(*strideTopic)
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		b.Handle(ctx, msg.Topic(), msg.Payload())
	}

	client := mqtt.NewClient(opts)
	b.Publish = func(topic string, qos byte, payload []byte) error {
		t := client.Publish(topic, qos, false, payload)
		t.Wait()
		return t.Error()
	}

	log.Printf("connecting to %s", *broker)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		log.Fatal(t.Error())
	}

	topic, qos := parseTopic(*opTopic)
	log.Printf("subscribing to %s (%d)", topic, qos)
	if t := client.Subscribe(topic, qos, nil); t.Wait() && t.Error() != nil {
		log.Fatal(t.Error())
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs

	log.Printf("disconnecting")
	client.Disconnect(uint(*quiesce))
}
