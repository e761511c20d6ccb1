package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"os"
	"syscall"

	"github.com/golang/glog"

	"github.com/robotalks/cwbridge/pkg/api"
	"github.com/robotalks/cwbridge/pkg/config"
	"github.com/robotalks/cwbridge/pkg/framework"
	"github.com/robotalks/cwbridge/pkg/link"
	"github.com/robotalks/cwbridge/pkg/mqtt"
	"github.com/robotalks/cwbridge/pkg/serialport"
	"github.com/robotalks/cwbridge/pkg/status"
)

func init() {
	config.SetupFlags()
}

func main() {
	if err := config.Parse(); err != nil {
		glog.Exit(err)
	}
	conf := config.Default()

	port, err := serialport.Open(&conf.Serial)
	if err != nil {
		glog.Exit(err)
	}

	store := status.NewStore()
	lnk := link.New(port, store)
	lnk.ReadTimeout = true

	runner := framework.NewRunner().HandleSignals()
	runner.Go(
		framework.NamedRun("link", framework.RunnableFunc(func(ctx context.Context) error {
			return framework.RunWithContextCloser(ctx, port, func() error {
				return lnk.Run(ctx)
			})
		})),
		framework.NamedRun("api", api.NewServer(conf.Listen, store, lnk)),
	)

	if conf.MQTT.URL != "" {
		q, err := mqtt.NewQueueFromURL(conf.MQTT.URL)
		if err != nil {
			glog.Exit(err)
		}
		runner.Go(framework.NamedRun("mqtt", &mqtt.Publisher{
			Broker:   q,
			Node:     conf.MQTT.Node,
			Status:   store,
			Commands: lnk,
			Interval: conf.MQTT.Interval,
		}))
	}

	if conf.Console != "" {
		consolePort, err := serialport.Open(&serialport.Config{
			Device:      conf.Console,
			Baud:        conf.Serial.Baud,
			ReadTimeout: conf.Serial.ReadTimeout,
		})
		if err != nil {
			glog.Exit(err)
		}
		defer consolePort.Close()
		runner.Go(framework.NamedRun("console", &link.Console{
			Reader:      consolePort,
			Prefix:      "console: ",
			ReadTimeout: true,
		}))
	}

	err = runner.Wait()
	if framework.HasError(err, link.ErrRestartRequested) {
		restart()
	}
	if err != nil {
		glog.Exit(err)
	}
	glog.Flush()
}

// restart replaces the process with a fresh instance, as a bridge
// reboot would.
func restart() {
	glog.Info("restart requested by peer")
	glog.Flush()
	exe, err := os.Executable()
	if err != nil {
		glog.Exitf("restart: %v", err)
	}
	err = syscall.Exec(exe, os.Args, os.Environ())
	glog.Exitf("restart: %v", err)
}
