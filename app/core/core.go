package core

import (
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/opencurrent/opencurrent/app/core/srv"
	"github.com/opencurrent/opencurrent/app/store"
	"github.com/opencurrent/opencurrent/app/store/filestore"
	"github.com/opencurrent/opencurrent/app/store/vectorstore"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	collections store.CollectionStore
	history     store.HistoryStore
	knowledge   store.KnowledgeStore

	httpEngine *gin.Engine

	metrics  *Metrics
	limiters *Limiters
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	core := &Core{
		cfg:        cfg,
		metrics:    NewMetrics("opencurrent", "core"),
		httpEngine: gin.New(),
		limiters:   NewLimiters(),
	}

	core.srv = srv.SetupSrvs(
		srv.ApplyAI(cfg.AI),
		srv.ApplySearch(cfg.AI.Serper),
	)

	setupStores(core)

	return core
}

func setupStores(core *Core) {
	switch core.cfg.Vector.Driver {
	case VectorDriverMemory:
		core.collections = vectorstore.NewMemoryCollectionStore(core.srv.AI())
	default:
		stores := vectorstore.MustSetup(core.cfg.Vector.Postgres, core.srv.AI())
		if err := stores().Install(); err != nil {
			panic(err)
		}
		core.collections = stores().CollectionStore()
	}

	if err := os.MkdirAll(core.cfg.Data.Dir, 0o755); err != nil {
		panic(err)
	}
	core.history = filestore.NewHistoryStore(core.cfg.Data.Dir)
	core.knowledge = filestore.NewKnowledgeStore(core.cfg.Data.Dir)
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Collections() store.CollectionStore {
	return s.collections
}

func (s *Core) History() store.HistoryStore {
	return s.history
}

func (s *Core) Knowledge() store.KnowledgeStore {
	return s.knowledge
}

// SetCollections swaps the collection store, used by tests to install an
// isolated in-memory instance.
func (s *Core) SetCollections(c store.CollectionStore) {
	s.collections = c
}

// SetSrv swaps the service layer, used by tests to install fake drivers.
func (s *Core) SetSrv(v *srv.Srv) {
	s.srv = v
}
