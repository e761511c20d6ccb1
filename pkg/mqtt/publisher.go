package mqtt

import (
	"context"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/cwbridge/pkg/status"
)

// Broker is the part of Queue used by Publisher.
type Broker interface {
	Connect() paho.Token
	Close() error
	Sub(topic string, handler Handler) paho.Token
	PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token
}

// StatusSource provides the status to publish.
type StatusSource interface {
	Snapshot() status.Record
	Version() uint64
}

// CommandSender forwards control commands to the trainer.
type CommandSender interface {
	SendCommand(string) error
}

// Publisher publishes status changes to <node>/status and forwards
// payloads received on <node>/cmd as control commands.
type Publisher struct {
	Broker   Broker
	Node     string
	Status   StatusSource
	Commands CommandSender
	Interval time.Duration

	published uint64
	hasPub    bool
}

// StatusTopic returns the topic the status is published to.
func (p *Publisher) StatusTopic() string {
	return p.Node + "/status"
}

// CommandTopic returns the topic commands are received from.
func (p *Publisher) CommandTopic() string {
	return p.Node + "/cmd"
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	if token := p.Broker.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer p.Broker.Close()
	if p.Commands != nil {
		p.Broker.Sub(p.CommandTopic(), p.handleCommand)
	}

	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := p.publishIfChanged(); err != nil {
			glog.Warningf("MQTT publish failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Publisher) publishIfChanged() error {
	if p.hasPub && p.Status.Version() == p.published {
		return nil
	}
	rec := p.Status.Snapshot()
	payload, err := EncodeStatus(&rec)
	if err != nil {
		return err
	}
	token := p.Broker.PubWith(p.StatusTopic(), payload, 0, true)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	p.published, p.hasPub = rec.Version, true
	glog.V(2).Infof("status v%d published", rec.Version)
	return nil
}

func (p *Publisher) handleCommand(topic string, payload []byte) {
	cmd := strings.TrimSpace(string(payload))
	if err := p.Commands.SendCommand(cmd); err != nil {
		glog.Warningf("MQTT command %q rejected: %v", cmd, err)
	}
}

// EncodeStatus encodes the record as a protobuf Struct.
func EncodeStatus(r *status.Record) ([]byte, error) {
	return proto.Marshal(StatusStruct(r))
}

// DecodeStatus decodes a payload produced by EncodeStatus.
func DecodeStatus(payload []byte) (*structpb.Struct, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// StatusStruct converts the record, keys follow the HTTP API.
func StatusStruct(r *status.Record) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"lesson":         numberValue(float64(r.Lesson)),
		"frequency":      numberValue(float64(r.Frequency)),
		"speed":          numberValue(float64(r.Speed)),
		"effectiveSpeed": numberValue(float64(r.EffectiveSpeed)),
		"accuracy":       numberValue(float64(r.Accuracy)),
		"decoderEnabled": boolValue(r.DecoderEnabled),
		"kochMode":       boolValue(r.KochMode),
		"currentText":    stringValue(r.CurrentText.String()),
		"decodedText":    stringValue(r.Decoded.String()),
		"sessions":       numberValue(float64(r.Sessions)),
		"characters":     numberValue(float64(r.Characters)),
		"bestWPM":        numberValue(float64(r.BestWPM)),
		"waveform":       stringValue(r.Waveform.String()),
		"output":         stringValue(r.Output.String()),
		"sending":        boolValue(r.Sending),
		"listening":      boolValue(r.Listening),
		"peerReady":      boolValue(r.PeerReady),
		"version":        numberValue(float64(r.Version)),
	}}
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func boolValue(v bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: v}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}
