package mqtt

import (
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received. The topic has the
// queue prefix stripped.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue multiplexes handlers over one MQTT client. Topics are relative to
// TopicPrefix and each distinct topic is subscribed on the broker once.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	QoS          byte
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock sync.RWMutex
	subs map[string][]*Subscription
}

// Subscription is a handler on a topic. Token is set for the first
// handler on a topic, which triggers the broker subscription.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	topic   string
	handler Handler
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix, subs: make(map[string][]*Subscription)}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from a broker URL, see Broker.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return b.NewQueue(), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub adds a handler on a topic or filter.
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.lock.Lock()
	first := len(q.subs[topic]) == 0
	q.subs[topic] = append(q.subs[topic], sub)
	q.lock.Unlock()
	if first {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, q.QoS, q.dispatch)
	}
	return sub
}

// Pub publishes to a topic with the queue QoS.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, q.QoS, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes every topic in use, for a fresh session.
func (q *Queue) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.lock.RLock()
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = q.QoS
	}
	q.lock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	for key := range filters {
		glog.V(2).Infof("SUB %q", key)
	}
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

// OnConnectHandler is the default implementation of paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Info("connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler is the default implementation of paho.ConnectLostHandler.
func (q *Queue) ConnectionLostHandler(c paho.Client, err error) {
	glog.Warningf("connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

// handlers collects the handlers a topic is delivered to.
func (q *Queue) handlers(topic string) []Handler {
	q.lock.RLock()
	defer q.lock.RUnlock()
	var handlers []Handler
	for key, subs := range q.subs {
		if key != topic && !(isFilter(key) && MatchTopic(topic, key)) {
			continue
		}
		for _, sub := range subs {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(q.TopicPrefix):]
	payload := msg.Payload()
	for _, h := range q.handlers(topic) {
		h(topic, payload)
	}
}

// remove drops sub and reports whether its topic has no handler left.
func (q *Queue) remove(sub *Subscription) bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	subs := q.subs[sub.topic]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(q.subs, sub.topic)
		return true
	}
	q.subs[sub.topic] = subs
	return false
}

// Close removes the handler and unsubscribes the topic once unused.
func (s *Subscription) Close() error {
	if !s.queue.remove(s) {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", s.topic)
	token := s.queue.Client.Unsubscribe(s.queue.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}
