package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/zenwatch/zenwatch/metrics"
	"github.com/zenwatch/zenwatch/version"
	"github.com/zenwatch/zenwatch/view"
)

// Config holds everything the monitor node needs at startup.
type Config struct {
	Port         string
	ReloadPeriod time.Duration
	TopicTTL     time.Duration
	CacheFile    string
	Decode       DecodeFunc
}

// Server wires the store, differ and hub together and owns the HTTP surface.
type Server struct {
	store  *Store
	hub    *Hub
	ingest *Ingest

	reloadPeriod time.Duration
	cacheFile    string
}

// Ingest returns the boundary the transport feeds events into.
func (s *Server) Ingest() *Ingest {
	return s.ingest
}

// Start brings up the monitor node and returns once the listener is bound.
func Start(ctx context.Context, cfg Config) (*Server, string, error) {
	if cfg.ReloadPeriod <= 0 {
		cfg.ReloadPeriod = time.Second
	}

	store := NewStore(cfg.TopicTTL)
	hub := NewHub()

	server := &Server{
		store:        store,
		hub:          hub,
		ingest:       NewIngest(store, cfg.Decode),
		reloadPeriod: cfg.ReloadPeriod,
		cacheFile:    cfg.CacheFile,
	}

	if cfg.CacheFile != "" {
		if err := server.LoadFromFile(cfg.CacheFile); err != nil {
			return nil, "", fmt.Errorf("failed to load cache file: %w", err)
		}
		server.StartPeriodicFlush(ctx, 10*time.Second)
	}

	store.StartEviction(ctx)
	go NewDiffer(store, hub).Run(ctx, cfg.ReloadPeriod)

	promHandler, err := metrics.InitPrometheus()
	if err != nil {
		return nil, "", fmt.Errorf("failed to initialize prometheus: %w", err)
	}
	if err := metrics.Init(); err != nil {
		return nil, "", fmt.Errorf("failed to initialize metrics: %w", err)
	}
	StartMetricsUpdater(ctx, server)

	port := cfg.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/sse", server.handleSSE)
	mux.HandleFunc("/ws", server.handleWS)
	mux.HandleFunc("/api/topics", server.handleTopics)
	mux.HandleFunc("/api/config", server.handleConfig)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promHandler)

	webServer, err := view.NewWebServer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create web server: %w", err)
	}
	mux.Handle("/", webServer)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	httpServer := &http.Server{
		Addr:    ":" + port,
		Handler: h2c.NewHandler(corsHandler.Handler(mux), &http2.Server{}),
	}

	// Create listener first to fail fast if port is in use
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, "", fmt.Errorf("failed to listen on port %s: %v", port, err)
	}

	printBanner(port)

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		<-ctx.Done()
		if cfg.CacheFile != "" {
			if err := server.FlushToFile(); err != nil {
				slog.Warn("final cache flush failed", "error", err)
			}
		}
		_ = httpServer.Shutdown(context.Background())
	}()

	return server, "localhost:" + port, nil
}

func printBanner(port string) {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	bold := color.New(color.Bold)

	fmt.Println()
	_, _ = green.Print("  ➜ ")
	_, _ = bold.Print("Zenwatch Topic Monitor ")
	fmt.Printf("(%s)", version.Version)
	fmt.Println(" running at:")
	_, _ = green.Print("  ➜ ")
	fmt.Print("Local:   ")
	_, _ = cyan.Printf("http://localhost:%s\n", port)

	for _, ip := range localIPv4s() {
		_, _ = green.Print("  ➜ ")
		fmt.Print("Network: ")
		_, _ = cyan.Printf("http://%s:%s\n", ip, port)
	}
	fmt.Println()
}

func localIPv4s() []string {
	var ips []string

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 ||
			iface.Flags&net.FlagUp == 0 ||
			iface.Flags&net.FlagRunning == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() || ipnet.IP.To4() == nil {
				continue
			}
			ips = append(ips, ipnet.IP.String())
		}
	}

	return ips
}
