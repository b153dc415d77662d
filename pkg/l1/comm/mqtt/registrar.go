package mqtt

import (
	"context"
	"encoding/json"

	fx "github.com/robotalks/maqueen.go/pkg/framework"
	"github.com/robotalks/maqueen.go/pkg/l1"
	"github.com/robotalks/maqueen.go/pkg/l1/comm"
)

// Registrar implements l1.Registrar using MQTT. The controller metadata is
// retained on <type>/<id>/meta while connected and cleared by the will.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	metaJSON  []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	broker, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	broker.Options.SetBinaryWill(broker.TopicPrefix+metaTopic(info.Ref), nil, 1, true)
	if broker.Options.ClientID == "" {
		broker.Options.SetClientID("maqueen:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:    broker.NewQueue(),
		Info:     info,
		metaJSON: meta,
	}
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

func metaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/meta"
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.PubWith(metaTopic(r.Info.Ref), nil, 1, true).Wait()
	r.Queue.Close()
	return ctx.Err()
}

func (r *Registrar) onConnected() {
	r.Queue.PubWith(metaTopic(r.Info.Ref), r.metaJSON, 1, true)
}
