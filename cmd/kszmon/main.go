package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/robotalks/ksz8863/pkg/announce"
	"github.com/robotalks/ksz8863/pkg/bus/bridge/mqtt"
	"github.com/robotalks/ksz8863/pkg/framework"
)

var (
	mqttURL = "mqtt://localhost:1883/ksz/"
)

func init() {
	if val := os.Getenv("KSZ_MQTT_URL"); val != "" {
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
	announce.Watch(q, func(name string, s *announce.Status) {
		if s == nil {
			log.Printf("%s: gone", name)
			return
		}
		out, err := s.JSON()
		if err != nil {
			log.Printf("%s: %v", name, err)
			return
		}
		log.Printf("%s: %s", name, out)
	})
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	runner := framework.NewRunner().HandleSignals()
	runner.Go(framework.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	if err = runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
