package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/task"
	"github.com/tsinghua-fib-lab/gridtraffic-sim/utils/config"
)

const mqttTimeout = 10 * time.Second

// publisher 对mqtt.Client发布能力的抽象
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Message MQTT消息体，每步一条
type Message struct {
	Job string `json:"job"`
	task.Record
	Series map[string]int64 `json:"series"`
}

// MQTTSink 每步将统计记录发布到 <topic>/<job>
// 说明：Observe不阻塞，Flush时统一等待所有发布完成
type MQTTSink struct {
	client  publisher
	close   func()
	topic   string
	qos     byte
	job     string
	pending []mqtt.Token
	errs    []error
}

// NewMQTTSink 连接MQTT broker
// 参数：cfg-输出配置（client_id为空时使用job），job-任务名
func NewMQTTSink(cfg config.MQTTOutput, job string) (*MQTTSink, error) {
	id := cfg.ClientID
	if id == "" {
		id = job
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(id).
		SetConnectTimeout(mqttTimeout).
		SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	log.Infof("publish records to mqtt %s topic %s/%s", cfg.Broker, cfg.Topic, job)
	s := newMQTTSink(client, cfg, job)
	s.close = func() { client.Disconnect(250) }
	return s, nil
}

func newMQTTSink(client publisher, cfg config.MQTTOutput, job string) *MQTTSink {
	return &MQTTSink{
		client: client,
		close:  func() {},
		topic:  cfg.Topic + "/" + job,
		qos:    cfg.QoS,
		job:    job,
	}
}

func (s *MQTTSink) Observe(r task.Record) {
	payload, err := json.Marshal(Message{Job: s.job, Record: r, Series: series(r)})
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("step %d: %w", r.Step, err))
		return
	}
	s.pending = append(s.pending, s.client.Publish(s.topic, s.qos, false, payload))
}

// Flush 等待所有已发起的发布完成
func (s *MQTTSink) Flush(c context.Context) error {
	errs := s.errs
	for _, token := range s.pending {
		select {
		case <-token.Done():
			if err := token.Error(); err != nil {
				errs = append(errs, err)
			}
		case <-c.Done():
			errs = append(errs, c.Err())
		case <-time.After(mqttTimeout):
			errs = append(errs, fmt.Errorf("mqtt publish to %s timed out", s.topic))
		}
		if c.Err() != nil {
			break
		}
	}
	s.pending, s.errs = nil, nil
	if len(errs) > 0 {
		log.Warnf("%d mqtt publishes failed", len(errs))
	}
	return errors.Join(errs...)
}

func (s *MQTTSink) Close(context.Context) error {
	s.close()
	return nil
}
