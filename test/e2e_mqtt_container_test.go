package test

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/ridewire/matchd/core/fairness"
	"github.com/ridewire/matchd/core/matching"
	"github.com/ridewire/matchd/core/pricing"
	"github.com/ridewire/matchd/infra/mqtt"
	"github.com/ridewire/matchd/infra/registry"
	"github.com/ridewire/matchd/internal/eventbus"
	"github.com/ridewire/matchd/test/util"
)

// connectDriverSim subscribes a simulated driver that acknowledges every
// offer published to its topic.
func connectDriverSim(t *testing.T, broker, driverID string) paho.Client {
	t.Helper()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("driver-sim-" + driverID)
	cli := paho.NewClient(opts)
	var connErr error
	for i := 0; i < 5; i++ {
		token := cli.Connect()
		token.Wait()
		connErr = token.Error()
		if connErr == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if connErr != nil {
		t.Skipf("broker not reachable: %v", connErr)
	}
	if token := cli.Subscribe("driver/"+driverID+"/offer", 0, func(_ paho.Client, m paho.Message) {
		var offer struct {
			CommandID string `json:"command_id"`
		}
		_ = json.Unmarshal(m.Payload(), &offer)
		payload, _ := json.Marshal(map[string]string{"command_id": offer.CommandID})
		cli.Publish("driver/"+driverID+"/ack", 0, false, payload)
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}
	return cli
}

func TestOfferAckWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	sim := connectDriverSim(t, broker, "d1")
	defer sim.Disconnect(100)

	client, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:   broker,
		ClientID: "matchd-e2e",
		AckTopic: "driver/+/ack",
	})
	require.NoError(t, err)

	reg := registry.NewMemoryRegistry(seedDriver("d1", 0.005))
	tracker, err := fairness.NewTracker(fairness.Config{})
	require.NoError(t, err)
	engine, err := matching.NewEngine(matching.DefaultConfig(), tracker, reg, nil)
	require.NoError(t, err)
	mgr, err := matching.NewManager(engine, client, reg, tracker, pricing.Config{}, 5*time.Second, nil, eventbus.New(), nil)
	require.NoError(t, err)
	defer func() { _ = mgr.Close() }()

	out, err := mgr.Process(ctx, request("order-e2e"))
	require.NoError(t, err)
	require.NotNil(t, out.Assignment, "driver simulator should acknowledge the offer")
	require.Equal(t, "d1", out.Assignment.DriverID)
	require.NotEmpty(t, out.Assignment.CommandID)
	require.Equal(t, 1, tracker.Count("d1"))
}
