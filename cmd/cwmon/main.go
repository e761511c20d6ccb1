package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/golang/protobuf/jsonpb"

	"github.com/robotalks/cwbridge/pkg/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/cw/"
)

func init() {
	if val := os.Getenv("CWBRIDGE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	var marshaler jsonpb.Marshaler
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if !strings.HasSuffix(topic, "/status") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		st, err := mqtt.DecodeStatus(payload)
		if err != nil {
			log.Printf("%s: bad status: %v", topic, err)
			return
		}
		out, err := marshaler.MarshalToString(st)
		if err != nil {
			log.Printf("%s: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, out)
	}))
	<-(chan struct{})(nil)
}
