// Package sh is the interactive console of the bridge, talking to the
// HTTP API of a running cwbridge.
package sh

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
	jsoniter "github.com/json-iterator/go"

	"github.com/robotalks/cwbridge/pkg/api"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Client *api.Client
}

const shellKey = "$shell"

var (
	// flags

	evalOnly   bool
	outputJSON bool
	serverURL  = "http://localhost:8080"

	// commands
	commands = []*ishell.Cmd{
		&StatusCmd,
		&StatsCmd,
		&LinkCmd,
		&SendCmd,
		&LastCmd,
		&ResetStatsCmd,
	}
)

func init() {
	if val := os.Getenv("CWBRIDGE_URL"); val != "" {
		serverURL = val
	}
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&serverURL, "server", serverURL, "Base URL of the bridge API.")
}

// New creates a new shell.
func New(client *api.Client) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     3 * time.Second,

		Shell:  ishell.New(),
		Client: client,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(promptOf(client.BaseURL))
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

func promptOf(baseURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(baseURL, "http://"), "https://")
	return fmt.Sprintf("[%s] > ", strings.TrimSuffix(host, "/"))
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Context creates a context bounded by the request timeout.
func (s *Shell) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout)
}

// Print prints a result either in JSON or in the formatted text.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(api.NewClient(serverURL)).Run(flag.Args()...)
}
