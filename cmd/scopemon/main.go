package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"reflect"
	"strings"

	fx "github.com/jose0796/scope.go/pkg/framework"
	"github.com/jose0796/scope.go/pkg/l1/comm/mqtt"
	"github.com/jose0796/scope.go/pkg/l1/comm/stream"
	"github.com/jose0796/scope.go/pkg/l1/env"
	"github.com/jose0796/scope.go/pkg/l1/msgs"
	"github.com/jose0796/scope.go/pkg/scale"
)

var (
	mqttURL   = "mqtt://localhost:1883/scope/"
	station   string
	fromStdin bool
)

func init() {
	if val := os.Getenv(env.EnvName("mqtt")); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&station, "station", station, "Only monitor this station.")
	flag.BoolVar(&fromStdin, "stdin", fromStdin, "Read messages piped from scoped -pipe.")
}

func formatSample(s *msgs.Sample) string {
	r := s.Reading()
	var parts []string
	for n, v := range r.Values {
		if !r.Enabled[n] || math.IsNaN(v) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.3f", scale.ChannelNames[n], v))
	}
	suffix := ""
	if !s.Aligned {
		suffix = " (resync)"
	}
	return fmt.Sprintf("#%d %s%s", s.Seq, strings.Join(parts, " "), suffix)
}

func printMessage(source string, msg fx.Message) {
	switch m := msg.(type) {
	case *msgs.Sample:
		log.Printf("%s: %s", source, formatSample(m))
	case *msgs.SampleBatch:
		for _, s := range m.Samples {
			log.Printf("%s: %s", source, formatSample(s))
		}
	default:
		log.Printf("%s: [%s] %s", source,
			reflect.Indirect(reflect.ValueOf(msg)).Type().Name(),
			msg.(msgs.SerializableMessage).Serializable().String())
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	if fromStdin {
		err := stream.ReadMessages(context.Background(), os.Stdin, func(msg fx.Message) error {
			printMessage("stdin", msg)
			return nil
		})
		if err != nil {
			log.Fatalln(err)
		}
		return
	}

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	topic := "#"
	if station != "" {
		topic = station + "/#"
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
		printMessage(topic, msg)
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
