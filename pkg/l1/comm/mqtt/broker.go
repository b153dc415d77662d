package mqtt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Broker is what a broker URL resolves to:
//
//	mqtt://[user[:password]@]host[:port][/prefix/][?client-id=ID&keepalive=30s&qos=1]
//
// The scheme mqtt maps to tcp; other schemes (ssl, ws, wss) pass through.
type Broker struct {
	Options     *paho.ClientOptions
	TopicPrefix string
	// QoS is used for plain publishes and subscriptions.
	QoS byte
}

// ParseBrokerURL parses a broker URL.
func ParseBrokerURL(brokerURL string) (*Broker, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	opts := paho.NewClientOptions().
		AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	b := &Broker{Options: opts, TopicPrefix: strings.TrimPrefix(u.Path, "/")}
	query := u.Query()
	if id := query.Get("client-id"); id != "" {
		opts.SetClientID(id)
	}
	if val := query.Get("keepalive"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("keepalive: %w", err)
		}
		opts.SetKeepAlive(d)
	}
	if val := query.Get("qos"); val != "" {
		qos, err := strconv.ParseUint(val, 10, 8)
		if err != nil || qos > 2 {
			return nil, fmt.Errorf("invalid qos %q", val)
		}
		b.QoS = byte(qos)
	}
	return b, nil
}

// NewQueue creates a Queue on the broker.
func (b *Broker) NewQueue() *Queue {
	q := NewQueue(b.Options, b.TopicPrefix)
	q.QoS = b.QoS
	return q
}

// MatchTopic matches topic with an MQTT filter. A trailing # also matches
// the parent level and wildcards never match topics starting with $.
func MatchTopic(topic, filter string) bool {
	if strings.HasPrefix(topic, "$") && !strings.HasPrefix(filter, "$") {
		return false
	}
	levels, parts := strings.Split(topic, "/"), strings.Split(filter, "/")
	for i, part := range parts {
		if part == "#" {
			return i == len(parts)-1
		}
		if i >= len(levels) {
			return false
		}
		if part != "+" && part != levels[i] {
			return false
		}
	}
	return len(levels) == len(parts)
}

func isFilter(topic string) bool {
	return strings.ContainsAny(topic, "+#")
}
