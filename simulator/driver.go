package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// SimulatedDriver connects to MQTT and responds to match offers.
type SimulatedDriver struct {
	ID       string
	Broker   string
	Strategy AckStrategy

	client paho.Client
	ackCh  chan string
}

// NewSimulatedDriver creates a new driver.
func NewSimulatedDriver(id, broker string, strat AckStrategy) *SimulatedDriver {
	return &SimulatedDriver{
		ID:       id,
		Broker:   broker,
		Strategy: strat,
		ackCh:    make(chan string, 50),
	}
}

// Run connects to the broker and listens for offers until ctx is done.
func (d *SimulatedDriver) Run(ctx context.Context) error {
	cli, err := mqttClientFactory(d.Broker, "sim-"+d.ID)
	if err != nil {
		return err
	}
	d.client = cli
	for i := 0; i < 5; i++ {
		go d.worker(ctx)
	}
	topic := fmt.Sprintf("driver/%s/offer", d.ID)
	if token := cli.Subscribe(topic, 0, d.onOffer); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	<-ctx.Done()
	close(d.ackCh)
	cli.Disconnect(250)
	return nil
}

func (d *SimulatedDriver) onOffer(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		log.Printf("%s: decode offer: %v", d.ID, err)
		return
	}
	select {
	case d.ackCh <- m.CommandID:
	default:
		log.Printf("%s: ack queue full, dropping offer %s", d.ID, m.CommandID)
	}
}

func (d *SimulatedDriver) worker(ctx context.Context) {
	for {
		select {
		case cmdID, ok := <-d.ackCh:
			if !ok {
				return
			}
			d.Strategy.Ack(ctx, d.client, d.ID, cmdID)
		case <-ctx.Done():
			return
		}
	}
}
