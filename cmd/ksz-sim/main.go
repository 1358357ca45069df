package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/ksz8863/pkg/bus"
	"github.com/robotalks/ksz8863/pkg/bus/bridge"
	"github.com/robotalks/ksz8863/pkg/bus/bridge/mqtt"
	"github.com/robotalks/ksz8863/pkg/bus/bridge/stream"
	"github.com/robotalks/ksz8863/pkg/bus/bridge/websocket"
	"github.com/robotalks/ksz8863/pkg/bus/emul"
	fx "github.com/robotalks/ksz8863/pkg/framework"
	"github.com/robotalks/ksz8863/pkg/ksz8863"
)

// Config defines the simulator options.
type Config struct {
	Name     string
	Revision uint
	TCPAddr  string
	UnixPath string
	WSAddr   string
	MQTTURL  string
}

var conf = Config{
	Name:    ksz8863.DriverName,
	TCPAddr: ":8863",
}

func init() {
	if val := os.Getenv("KSZ_MQTT_URL"); val != "" {
		conf.MQTTURL = val
	}
	flag.StringVar(&conf.Name, "name", conf.Name, "Bridge name on MQTT.")
	flag.UintVar(&conf.Revision, "revision", conf.Revision, "Silicon revision, 0-7.")
	flag.StringVar(&conf.TCPAddr, "tcp", conf.TCPAddr, "TCP listen address, empty to disable.")
	flag.StringVar(&conf.UnixPath, "unix", conf.UnixPath, "Unix socket path.")
	flag.StringVar(&conf.WSAddr, "ws", conf.WSAddr, "Websocket listen address.")
	flag.StringVar(&conf.MQTTURL, "mqtt", conf.MQTTURL, "MQTT broker URL, e.g. mqtt://localhost:1883/ksz/")
}

type listenServer struct {
	name     string
	listener net.Listener
	link     bus.Link
}

func (s *listenServer) Name() string {
	return s.name
}

func (s *listenServer) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, s.listener, func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return err
			}
			glog.Infof("%s: client %s connected", s.name, conn.RemoteAddr())
			go func() {
				err := fx.RunWithContextCloser(ctx, conn, func() error {
					return bridge.NewServer(stream.New(conn), s.link).Run(ctx)
				})
				glog.Infof("%s: client %s disconnected: %v", s.name, conn.RemoteAddr(), err)
			}()
		}
	})
}

func listen(network, address string, link bus.Link) fx.Runnable {
	l, err := net.Listen(network, address)
	if err != nil {
		log.Fatalln(err)
	}
	glog.Infof("listening on %s %s", network, l.Addr())
	return &listenServer{name: network, listener: l, link: link}
}

func serveWebsocket(address string, link bus.Link) fx.Runnable {
	l, err := net.Listen("tcp", address)
	if err != nil {
		log.Fatalln(err)
	}
	glog.Infof("websocket listening on %s", l.Addr())
	srv := &http.Server{Handler: websocket.Handler(link)}
	return fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, srv, func() error {
			return srv.Serve(l)
		})
	}))
}

func serveMQTT(brokerURL, name string, link bus.Link) fx.Runnable {
	q, err := mqtt.NewQueueFromURL(brokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	rw := mqtt.NewPacketReadWriter(q).ForSlave(name)
	if err = rw.Subscribe(); err != nil {
		log.Fatalln(err)
	}
	glog.Infof("serving on MQTT %s%s", q.TopicPrefix, name)
	return fx.NamedRun("mqtt", fx.RunFunc(func(ctx context.Context) error {
		defer q.Close()
		return fx.RunWithContextCloser(ctx, rw, func() error {
			return bridge.NewServer(rw, link).Run(ctx)
		})
	}))
}

func main() {
	flag.Parse()

	chip := emul.New(byte(conf.Revision))
	runner := fx.NewRunner().HandleSignals()
	if conf.TCPAddr != "" {
		runner.Go(listen("tcp", conf.TCPAddr, chip))
	}
	if conf.UnixPath != "" {
		runner.Go(listen("unix", conf.UnixPath, chip))
	}
	if conf.WSAddr != "" {
		runner.Go(serveWebsocket(conf.WSAddr, chip))
	}
	if conf.MQTTURL != "" {
		runner.Go(serveMQTT(conf.MQTTURL, conf.Name, chip))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
