package mqtt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
	"github.com/hydrolox-0/ff-sih-backup/infra/sources"
)

const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

func startMosquitto(t *testing.T) string {
	t.Helper()
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mosquitto.conf")
	require.NoError(t, os.WriteFile(path, []byte(mosquittoConf), 0644))

	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
			Files: []tc.ContainerFile{{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			}},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })

	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func connectWithRetry(t *testing.T, cfg Config) *Client {
	t.Helper()
	var (
		c   *Client
		err error
	)
	for i := 0; i < 10; i++ {
		if c, err = Connect(cfg); err == nil {
			return c
		}
		time.Sleep(300 * time.Millisecond)
	}
	require.NoError(t, err)
	return nil
}

func TestMosquittoOverrideRoundTrip(t *testing.T) {
	broker := startMosquitto(t)

	sub := connectWithRetry(t, Config{Broker: broker, ClientID: "engine", QoS: 1})
	defer sub.Disconnect()
	store := sources.NewMemoryOverrideStore()
	l := NewOverrideListener(store, "depot")
	require.NoError(t, l.Start(sub))

	pub := connectWithRetry(t, Config{Broker: broker, ClientID: "operator", QoS: 1})
	defer pub.Disconnect()
	require.NoError(t, pub.Publish("depot/TS-007/override", false, []byte(`{"status_override":"standby","override_by":"op"}`)))

	assert.Eventually(t, func() bool {
		o, err := store.Get("TS-007")
		return err == nil && o.StatusOverride == model.StatusStandby
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, pub.Publish("depot/TS-007/override/clear", false, []byte(`{}`)))
	assert.Eventually(t, func() bool {
		_, err := store.Get("TS-007")
		return err != nil
	}, 5*time.Second, 50*time.Millisecond)
}
