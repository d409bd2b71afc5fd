package builder

import (
    "context"
    "crypto/tls"
    "errors"
    "fmt"
    "net"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/park285/checkers-arena/internal/api/httpapi"
    "github.com/park285/checkers-arena/internal/api/ws"
    "github.com/park285/checkers-arena/internal/archive"
    "github.com/park285/checkers-arena/internal/arena"
    "github.com/park285/checkers-arena/internal/config"
    "github.com/park285/checkers-arena/internal/events"
    "github.com/park285/checkers-arena/internal/lobby"
    "github.com/park285/checkers-arena/internal/msgcat"
    "github.com/park285/checkers-arena/internal/room"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
)

type Deps struct {
    Service  *arena.Service
    Registry *room.Registry
    Mirror   *lobby.Mirror
    Archive  archive.Repository
    Events   events.Publisher
    Hub      *ws.Hub
    Handler  http.Handler
}

// New wires the service from cfg. Redis, Postgres and Kafka are optional; each
// one that is configured must be reachable.
func New(cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }
    d := &Deps{}

    catalog, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        return nil, fmt.Errorf("load messages: %w", err)
    }

    // Lobby mirror (Redis optional)
    var ids room.IDGenerator
    if strings.TrimSpace(cfg.RedisURL) != "" {
        opts, perr := parseRedisURL(cfg.RedisURL)
        if perr != nil {
            return nil, fmt.Errorf("parse redis url: %w", perr)
        }
        rdb := redis.NewClient(opts)
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        err := rdb.Ping(ctx).Err()
        cancel()
        if err != nil {
            _ = rdb.Close()
            return nil, fmt.Errorf("ping redis: %w", err)
        }
        d.Mirror = lobby.NewMirror(rdb)
        ids = d.Mirror.CodeGenerator(nil, cfg.RoomCodeAttempts, 2*time.Second)
        logger.Info("lobby_mirror_enabled", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
    }

    // Archive (DB optional)
    if strings.TrimSpace(cfg.DatabaseURL) != "" {
        repo, err := archive.NewSQLRepository(cfg.DatabaseURL)
        if err != nil {
            d.Close()
            return nil, fmt.Errorf("open archive: %w", err)
        }
        d.Archive = repo
    } else {
        d.Archive = archive.NewMemoryRepository()
    }

    // Events (Kafka optional)
    if len(cfg.KafkaBrokers) > 0 {
        pub, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
        if err != nil {
            d.Close()
            return nil, fmt.Errorf("init kafka publisher: %w", err)
        }
        d.Events = pub
        logger.Info("events_enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
    } else {
        d.Events = events.Nop{}
    }

    regOpts := []room.Option{room.WithCodeAttempts(cfg.RoomCodeAttempts)}
    if ids != nil {
        regOpts = append(regOpts, room.WithRoomIDs(ids))
    }
    d.Registry = room.NewRegistry(regOpts...)

    d.Service = arena.NewService(arena.Deps{
        Registry: d.Registry,
        Mirror:   d.Mirror,
        Archive:  d.Archive,
        Events:   d.Events,
        Catalog:  catalog,
        Logger:   logger,
    }, arena.Config{RecentLimit: cfg.ArchiveRecentLimit})

    d.Hub = ws.NewHub(d.Service, ws.Options{
        OriginPatterns: cfg.AllowedOrigins,
        MessageRate:    cfg.WSMessageRate,
        MessageBurst:   cfg.WSMessageBurst,
    }, logger)
    d.Handler = httpapi.NewRouter(d.Service, d.Hub, logger)
    return d, nil
}

// Close releases every external client that New opened.
func (d *Deps) Close() error {
    var errs []error
    if d.Events != nil {
        errs = append(errs, d.Events.Close())
    }
    if d.Archive != nil {
        errs = append(errs, d.Archive.Close())
    }
    if d.Mirror != nil {
        errs = append(errs, d.Mirror.Close())
    }
    return errors.Join(errs...)
}

func parseRedisURL(raw string) (*redis.Options, error) {
    u, err := url.Parse(raw)
    if err != nil {
        return nil, err
    }
    if u.Scheme != "redis" && u.Scheme != "rediss" {
        return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
    }
    host := u.Hostname()
    if host == "" {
        host = "localhost"
    }
    portStr := u.Port()
    if portStr == "" {
        portStr = "6379"
    }
    if _, err := strconv.Atoi(portStr); err != nil {
        return nil, err
    }
    db := 0
    if p := strings.TrimPrefix(u.Path, "/"); p != "" {
        if n, err := strconv.Atoi(p); err == nil {
            db = n
        }
    }
    pass, _ := u.User.Password()
    opts := &redis.Options{
        Addr:         net.JoinHostPort(host, portStr),
        Username:     u.User.Username(),
        Password:     pass,
        DB:           db,
        DialTimeout:  5 * time.Second,
        ReadTimeout:  3 * time.Second,
        WriteTimeout: 3 * time.Second,
    }
    if u.Scheme == "rediss" {
        opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host}
    }
    return opts, nil
}
