package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	broker *Broker
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	broker, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, broker: broker}, nil
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) (res []l1.ControllerInfo, err error) {
	q := c.broker.NewQueue()
	q.Connect()
	defer q.Close()
	resCh := make(chan l1.ControllerInfo, 1)
	q.Sub("+/+/meta", Handler(func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{
		Queue: c.broker.NewQueue(),
	}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// ControllerConn implements ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// parseMeta decodes a retained meta message. An empty payload is the
// will of a gone controller.
func parseMeta(topic string, payload []byte) (info l1.ControllerInfo, ok bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != "meta" || len(payload) == 0 {
		return info, false
	}
	info.Ref = l1.ControllerRef{Type: items[0], ID: items[1]}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.V(2).Infof("meta %s: %v", topic, err)
	}
	return info, true
}
