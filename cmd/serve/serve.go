package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gigurra/morselamp/cmd/common"
	"github.com/gigurra/morselamp/cmd/morse/code"
	"github.com/gigurra/morselamp/cmd/morse/driver"
	"github.com/gigurra/morselamp/cmd/morse/indicator"
	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

type Params struct {
	Port        int    `short:"p" help:"Port to listen on." default:"8080"`
	Host        string `help:"Host interface to bind to." default:"localhost"`
	Config      string `short:"c" optional:"true" help:"Config file (default ~/.morselamp/config.json)." default:""`
	Indicator   string `short:"i" optional:"true" help:"Indicator backend: terminal, log, audio or gpio (default from config)." default:""`
	WatchConfig bool   `help:"Apply changes to the config file while running." default:"true"`
	Secret      string `optional:"true" help:"Require HS256 bearer tokens signed with this secret on POST routes." default:""`
	PrintToken  bool   `help:"Print a 24h bearer token for --secret on startup." default:"false"`
	QR          bool   `help:"Print a QR code of the server URL." default:"false"`

	ReadTimeoutMillis  int64 `help:"Maximum duration for reading the entire request, including the body (ms)." default:"5000"`
	WriteTimeoutMillis int64 `help:"Maximum duration before timing out writes of the response (ms)." default:"10000"`
	IdleTimeoutMillis  int64 `help:"Maximum amount of time to wait for the next request when keep-alives are enabled (ms)." default:"120000"`
}

func Cmd() *cobra.Command {
	return boa.CmdT[Params]{
		Use:         "serve",
		Short:       "Expose the lamps over HTTP",
		Long:        "Run the lamp device behind an HTTP API: POST /message, GET /message, POST /config, GET /status, and a websocket event stream on /ws.",
		ParamEnrich: common.DefaultParamEnricher(),
		RunFunc: func(params *Params, cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := Run(ctx, params); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "serve: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func Run(ctx context.Context, params *Params) error {
	cfg, err := common.LoadConfig(params.Config, common.Overrides{Indicator: params.Indicator})
	if err != nil {
		return err
	}
	ind, err := common.NewIndicator(cfg, os.Stdout)
	if err != nil {
		return err
	}
	events := indicator.NewBroadcaster()
	dev, err := common.NewDevice(cfg, indicator.Multi(ind, events))
	if err != nil {
		return err
	}
	defer dev.Close()
	// Stops the config watcher before the device closes.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := dev.Start(); err != nil {
		return err
	}
	if params.WatchConfig {
		if err := common.FollowConfig(ctx, params.Config, dev); err != nil {
			slog.Warn("not watching config", "error", err)
		}
	}

	addr := fmt.Sprintf("%s:%d", params.Host, params.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      NewHandler(dev, events, params.Secret),
		ReadTimeout:  time.Duration(params.ReadTimeoutMillis) * time.Millisecond,
		WriteTimeout: time.Duration(params.WriteTimeoutMillis) * time.Millisecond,
		IdleTimeout:  time.Duration(params.IdleTimeoutMillis) * time.Millisecond,
	}

	url := "http://" + addr
	if params.PrintToken {
		if params.Secret == "" {
			return errors.New("--print-token needs --secret")
		}
		token, err := NewToken(params.Secret, 24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Bearer token: %s\n", token)
	}
	if params.QR {
		qr, err := qrcode.New(url, qrcode.Medium)
		if err != nil {
			return fmt.Errorf("generating qr code: %w", err)
		}
		fmt.Print(qr.ToSmallString(false))
	}

	// Handle graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("serving lamps", "url", url, "indicator", cfg.Indicator, "auth", params.Secret != "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		return err
	}
}

// NewHandler routes the lamp API onto dev. Indicator events for /ws come
// from events, which should be among dev's indicators. A non-empty secret
// protects the POST routes with bearer tokens.
func NewHandler(dev *driver.Device, events *indicator.Broadcaster, secret string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /message", requireToken(secret, handlePostMessage(dev)))
	mux.HandleFunc("GET /message", handleGetMessage(dev))
	mux.HandleFunc("POST /config", requireToken(secret, handlePostConfig(dev)))
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dev.Status())
	})
	mux.HandleFunc("GET /ws", handleWS(events))
	return logRequests(mux)
}

type messageResponse struct {
	Accepted  int    `json:"accepted"`
	Truncated bool   `json:"truncated"`
	Stream    string `json:"stream"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func handlePostMessage(dev *driver.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
			return
		}
		msg := strings.ToUpper(strings.TrimRight(string(body), "\r\n"))

		h := dev.Open()
		defer h.Close()
		n, err := io.WriteString(h, msg)
		switch {
		case errors.Is(err, driver.ErrBusy):
			writeJSON(w, http.StatusConflict, errorResponse{err.Error()})
			return
		case errors.Is(err, code.ErrInvalidChar):
			writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
			return
		case err != nil && !errors.Is(err, driver.ErrTruncated):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{err.Error()})
			return
		}

		rendered, _ := io.ReadAll(h)
		writeJSON(w, http.StatusAccepted, messageResponse{
			Accepted:  n,
			Truncated: errors.Is(err, driver.ErrTruncated),
			Stream:    string(rendered),
		})
	}
}

func handleGetMessage(dev *driver.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := dev.Open()
		defer h.Close()
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.Copy(w, h)
	}
}

// configRequest takes the option by name or id, and the value in any form
// driver.ParseValue understands.
type configRequest struct {
	Option string `json:"option"`
	Value  string `json:"value"`
}

func handlePostConfig(dev *driver.Device) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{fmt.Sprintf("bad request body: %v", err)})
			return
		}
		opt, err := driver.ParseOption(req.Option)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
			return
		}
		value, err := driver.ParseValue(opt, req.Value)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
			return
		}
		if err := dev.Configure(opt, value); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, driver.ErrInvalidValue) || errors.Is(err, driver.ErrInvalidOption) {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, dev.Status())
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func handleWS(events *indicator.Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade", "error", err)
			return
		}
		defer conn.Close()
		// Server read/write timeouts must not end a long lived stream.
		_ = conn.UnderlyingConn().SetDeadline(time.Time{})

		ch, cancel := events.Subscribe(64)
		defer cancel()

		// Reads only notice the client going away.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-gone:
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.Info("request", "status", rw.status, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}
