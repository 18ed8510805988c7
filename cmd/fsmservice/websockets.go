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
	"html/template"
	"log"
	"net/http"

	"github.com/Comcast/fsm/crew"

	"github.com/gorilla/websocket"
)

// WebSockets returns a handler for websocket clients.  A client sends
// Ops and receives Results.  Every client also receives the firehose
// of Reports for all machines.
func (s *Service) WebSockets(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		out := make(chan interface{}, 32)

		id := c.RemoteAddr().String()
		s.conns.Store(id, out)
		defer s.conns.Delete(id)

		ctl := make(chan bool)
		defer close(ctl)

		// Only this goroutine writes to the connection.
		go func() {
			for {
				select {
				case <-ctl:
					return
				case <-ctx.Done():
					return
				case x := <-out:
					js, err := json.Marshal(&x)
					if err != nil {
						log.Printf("websocket Marshal error %v on %#v", err, x)
						continue
					}
					if err = c.WriteMessage(websocket.TextMessage, js); err != nil {
						log.Println("websocket write:", err)
					}
				}
			}
		}()

		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("websocket read:", err)
				break
			}

			var result *crew.Result
			var op crew.Op
			if err := json.Unmarshal(message, &op); err != nil {
				result = &crew.Result{
					Error: fmt.Sprintf("can't parse: %v", err),
				}
			} else {
				result = s.Process(ctx, &op)
			}

			select {
			case out <- result:
			case <-ctx.Done():
				return
			}
		}
	}
}

// UI returns a handler that serves a tiny page for talking to the
// websocket API.
func UI(addr string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uiTemplate.Execute(w, addr)
	}
}

var uiTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script>
window.addEventListener("load", function(evt) {

    var output = document.getElementById("output");
    var input = document.getElementById("input");
    var ws;

    var print = function(message) {
        var d = document.createElement("div");
        d.textContent = message;
        output.insertBefore(d, output.firstChild);
    };

    document.getElementById("open").onclick = function(evt) {
        if (ws) {
            return false;
        }
        ws = new WebSocket("ws://{{.}}/ws/api");
        ws.onopen = function(evt) {
            print("OPEN");
        }
        ws.onclose = function(evt) {
            print("CLOSE");
            ws = null;
        }
        ws.onmessage = function(evt) {
            print("RESPONSE: " + evt.data);
        }
        ws.onerror = function(evt) {
            print("ERROR: " + evt.data);
        }
        return false;
    };

    document.getElementById("send").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        print("SEND: " + input.value);
        ws.send(input.value);
        return false;
    };

    document.getElementById("close").onclick = function(evt) {
        if (!ws) {
            return false;
        }
        ws.close();
        return false;
    };

});
</script>
<style>
body { margin: 2em }
</style>
</head>
<body>
<form>
<button id="open">Open connection</button>
<button id="close">Close connection</button>
<br><input id="input" size="100" type="text" value='{"op":"list"}'>
<br><button id="send">Send</button>
<hr>
<div id="output"></div>
</body>
</html>
`))
