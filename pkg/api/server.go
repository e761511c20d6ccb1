// Package api serves the trainer status over HTTP.
package api

import (
	"context"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/websocket"

	"github.com/robotalks/cwbridge/pkg/link"
	"github.com/robotalks/cwbridge/pkg/status"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Body limits of POST requests.
const (
	MaxControlBody = link.MaxCommandLen
	MaxStatsBody   = 63
)

// StatusSource is the read side of the status store.
type StatusSource interface {
	status.Reader
	Version() uint64
	SetNetworkUp(bool)
}

// Link is the outbound side of the serial link.
type Link interface {
	SendCommand(string) error
	LastCommand() string
	Info() link.Info
}

// Server serves the status API.
type Server struct {
	Addr         string
	Status       StatusSource
	Link         Link
	PollInterval time.Duration

	mux  *http.ServeMux
	done chan struct{}
}

// NewServer creates a Server.
func NewServer(addr string, src StatusSource, lnk Link) *Server {
	s := &Server{
		Addr:         addr,
		Status:       src,
		Link:         lnk,
		PollInterval: 200 * time.Millisecond,
		mux:          http.NewServeMux(),
		done:         make(chan struct{}),
	}
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/control", s.handleControl)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/link", s.handleLink)
	s.mux.Handle("/api/ws", websocket.Handler(s.streamStatus))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	glog.Infof("API listening on %s", ln.Addr())
	s.Status.SetNetworkUp(true)
	defer s.Status.SetNetworkUp(false)
	defer close(s.done)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return ctx.Err()
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rec := s.Status.Snapshot()
	writeJSON(w, NewStatusView(&rec))
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, &controlView{LastCommand: s.Link.LastCommand()})
	case http.MethodPost:
		body, ok := readBody(w, r, MaxControlBody)
		if !ok {
			return
		}
		var req interface{}
		if err := json.Unmarshal(body, &req); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}
		obj, _ := req.(map[string]interface{})
		cmd, ok := obj["cmd"].(string)
		if !ok {
			badRequest(w, "Missing 'cmd' string")
			return
		}
		if err := s.Link.SendCommand(cmd); err != nil {
			if err == link.ErrCommandEmpty {
				badRequest(w, "Empty 'cmd' string")
				return
			}
			glog.Warningf("send command %q failed: %v", cmd, err)
			http.Error(w, "Serial link unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, &okView{OK: true})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rec := s.Status.Snapshot()
		writeJSON(w, NewStatsView(rec.Stats()))
	case http.MethodPost:
		body, ok := readBody(w, r, MaxStatsBody)
		if !ok {
			return
		}
		var req interface{}
		if err := json.Unmarshal(body, &req); err != nil {
			badRequest(w, "Invalid JSON")
			return
		}
		obj, _ := req.(map[string]interface{})
		if reset, _ := obj["reset"].(bool); reset {
			glog.Info("status reset requested")
			s.Status.Reset()
		}
		writeJSON(w, &okView{OK: true})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rec := s.Status.Snapshot()
	writeJSON(w, NewLinkView(s.Link.Info(), &rec))
}

// streamStatus pushes the status whenever it changes.
func (s *Server) streamStatus(ws *websocket.Conn) {
	defer ws.Close()
	interval := s.PollInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var sent uint64
	first := true
	for {
		if version := s.Status.Version(); first || version != sent {
			rec := s.Status.Snapshot()
			out, err := json.Marshal(NewStatusView(&rec))
			if err != nil {
				glog.Errorf("encode status: %v", err)
				return
			}
			if err := websocket.Message.Send(ws, string(out)); err != nil {
				glog.V(1).Infof("status stream closed: %v", err)
				return
			}
			sent, first = rec.Version, false
		}
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

func readBody(w http.ResponseWriter, r *http.Request, max int) ([]byte, bool) {
	body, err := ioutil.ReadAll(io.LimitReader(r.Body, int64(max)+1))
	if err != nil {
		badRequest(w, "Failed to read body")
		return nil, false
	}
	if len(body) == 0 || len(body) > max {
		badRequest(w, "Empty or too large body")
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

func badRequest(w http.ResponseWriter, reason string) {
	http.Error(w, reason, http.StatusBadRequest)
}

func methodNotAllowed(w http.ResponseWriter) {
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
