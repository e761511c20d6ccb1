package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	conf := NewConfig()
	conf.MQTT.Node = "default-node"
	err := conf.Load([]byte(`
serial:
  device: /dev/ttyACM1
  read_timeout: 50ms
listen: 127.0.0.1:9000
mqtt:
  url: mqtt://broker:1883/cw/
`))
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM1", conf.Serial.Device)
	require.Equal(t, 115200, conf.Serial.Baud)
	require.Equal(t, 50*time.Millisecond, conf.Serial.ReadTimeout)
	require.Equal(t, "127.0.0.1:9000", conf.Listen)
	require.Equal(t, "mqtt://broker:1883/cw/", conf.MQTT.URL)
	require.Equal(t, "default-node", conf.MQTT.Node)
	require.Equal(t, time.Second, conf.MQTT.Interval)
	require.Empty(t, conf.Console)
}

func TestLoadInvalid(t *testing.T) {
	conf := NewConfig()
	require.Error(t, conf.Load([]byte("serial: [")))
}

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "cwbridge")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	fn := filepath.Join(dir, "cwbridge.yaml")
	require.NoError(t, ioutil.WriteFile(fn, []byte("console: /dev/ttyS0\n"), 0644))

	conf := NewConfig()
	require.NoError(t, conf.LoadFile(fn))
	require.Equal(t, "/dev/ttyS0", conf.Console)
	require.Error(t, conf.LoadFile(filepath.Join(dir, "missing.yaml")))
}

func TestMachineID(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.True(t, len(id) <= 12)
}
