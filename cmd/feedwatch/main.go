// feedwatch is a debug client for the live feed stream: it connects
// to /api/v1/feed/ws and prints every update it receives.
package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8888/api/v1/feed/ws", "feed websocket URL")
	initData := flag.String("init-data", "", "telegram init data for the Authorization header")
	flag.Parse()

	header := http.Header{}
	if *initData != "" {
		header.Add("Authorization", "Telegram "+*initData)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			log.Println("read error:", err)
			return
		}

		var pretty map[string]any
		if err := json.Unmarshal(p, &pretty); err != nil {
			log.Printf("Received (raw):\n%s\n", p)
			continue
		}

		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			log.Println("json marshal error:", err)
			continue
		}
		log.Printf("Received:\n%s\n", out)
	}
}
