package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"warptrade.io/internal/persistence/flatfile"
	"warptrade.io/internal/persistence/indexdb"
	persistlog "warptrade.io/internal/persistence/log"
	"warptrade.io/internal/sim/catalogs"
	"warptrade.io/internal/sim/gamecfg"
	"warptrade.io/internal/sim/tuning"
	"warptrade.io/internal/sim/world"
	"warptrade.io/internal/transport/tcp"
	"warptrade.io/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":1234", "tcp listen address")
		wsAddr     = flag.String("ws_addr", "", "websocket http listen address (empty to disable)")
		configDir  = flag.String("configs", "./configs", "config directory (shiptypes.data, planettypes.data, config.data)")
		dataDir    = flag.String("data", "./data", "runtime data directory (save files, audit logs, index db)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite read-model index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}
	cfg, err := gamecfg.Load(filepath.Join(*configDir, "config.data"))
	if err != nil {
		logger.Fatalf("load game config: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	_ = os.MkdirAll(*dataDir, 0o755)

	w := world.New(cfg, cats, log.New(os.Stdout, "[world] ", log.LstdFlags|log.Lmicroseconds))
	if _, err := os.Stat(filepath.Join(*dataDir, flatfile.UniverseFile)); err != nil {
		logger.Fatalf("no universe at %s: %v (run bigbang to seed one)", *dataDir, err)
	}
	if err := w.LoadDir(*dataDir); err != nil {
		logger.Fatalf("load world: %v", err)
	}
	st := w.GameStats()
	logger.Printf("world loaded: %d sectors, %d ports, %d planets, %d players",
		st.Sectors, st.Ports, st.Planets, st.Players)

	// Audit fan-out: JSONL+zstd is the source of truth, sqlite is the
	// queryable read model.
	var audit world.AuditLogger
	var idx *indexdb.SQLiteIndex
	if tune.AuditLog {
		jl := persistlog.NewAuditLogger(*dataDir)
		defer jl.Close()
		audit = jl
	}
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index", "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index catalogs: %v", err)
		}
		if audit != nil {
			audit = multiAuditLogger{a: audit, b: idx}
		} else {
			audit = idx
		}
	}
	if audit != nil {
		w.SetAuditLogger(audit)
	}

	sessions := persistlog.NewSessionLogger(*dataDir)
	defer sessions.Close()

	ctx, cancel := signalContext()
	defer cancel()

	save := func() error {
		if err := w.SaveDir(*dataDir); err != nil {
			return err
		}
		if idx != nil {
			img := w.Export()
			idx.RecordSave(*dataDir, w.GameStats(), len(img.Ships))
		}
		return nil
	}
	hooks := tcp.Hooks{
		Save:     save,
		Shutdown: cancel,
		SessionEvent: func(session, remote, player, event, detail string) {
			_ = sessions.WriteSession(persistlog.SessionEvent{
				Time:    time.Now().UTC(),
				Session: session,
				Remote:  remote,
				Player:  player,
				Event:   event,
				Detail:  detail,
			})
		},
	}

	go w.RunScheduler(ctx, time.Duration(tune.SchedulerPollSeconds)*time.Second)

	if tune.AutosaveMinutes > 0 {
		go func() {
			t := time.NewTicker(time.Duration(tune.AutosaveMinutes) * time.Minute)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					if err := save(); err != nil {
						logger.Printf("autosave: %v", err)
					} else if idx != nil {
						idx.RecordStats(w.GameStats())
					}
				}
			}
		}()
	}

	if a := strings.TrimSpace(*wsAddr); a != "" {
		wss := ws.NewServer(w, tune, hooks, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/ws", wss.Handler(ctx))
		mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
			rw.WriteHeader(200)
			_, _ = rw.Write([]byte("ok"))
		})
		hs := &http.Server{Addr: a, Handler: mux}
		go func() {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = hs.Shutdown(sctx)
		}()
		go func() {
			logger.Printf("websocket bridge on %s", a)
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("ws serve: %v", err)
			}
		}()
	}

	srv := tcp.NewServer(*addr, w, tune, hooks, log.New(os.Stdout, "[tcp] ", log.LstdFlags|log.Lmicroseconds))
	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Printf("serve: %v", err)
	}

	// Final save after the listener has drained its sessions.
	if err := save(); err != nil {
		logger.Printf("final save: %v", err)
	} else {
		logger.Printf("world saved to %s", *dataDir)
	}
}

// multiAuditLogger fans audit entries out to two sinks. An index write
// failure never masks the JSONL write.
type multiAuditLogger struct {
	a, b world.AuditLogger
}

func (m multiAuditLogger) WriteAudit(e world.AuditEntry) error {
	err := m.a.WriteAudit(e)
	if berr := m.b.WriteAudit(e); err == nil {
		err = berr
	}
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
