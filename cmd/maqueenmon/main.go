package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"reflect"
	"strings"

	"github.com/robotalks/maqueen.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/maqueen.go/pkg/l1/msgs"

	_ "github.com/robotalks/maqueen.go/pkg/maqueen/msgs"
	_ "github.com/robotalks/maqueen.go/pkg/teleop/msgs"
)

var (
	mqttURL    = "mqtt://localhost:1883/robo/"
	topic      = "#"
	outputJSON bool
)

func init() {
	if val := os.Getenv("ROBO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&topic, "topic", topic, "Topic filter under the prefix, e.g. maqueen/+/evt.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print messages in JSON.")
}

func format(msg msgs.SerializableMessage) string {
	if outputJSON {
		if out, err := json.Marshal(msg.Serializable()); err == nil {
			return string(out)
		}
	}
	return msg.Serializable().String()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(topic, mqtt.Handler(func(topic string, payload []byte) {
		if strings.HasSuffix(topic, "/meta") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		typed, err := msgs.DecodeTyped(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		msg, err := typed.Decode()
		if err != nil {
			log.Printf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
			return
		}
		log.Printf("%s: #%d [%s] %s", topic, typed.Sequence,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			format(msg.(msgs.SerializableMessage)))
	}))

	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	defer q.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
