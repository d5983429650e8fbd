package main

import (
    "context"
    "errors"
    "fmt"
    "math"
    "os"
    "sort"
    "strconv"
    "time"

    "go.uber.org/zap"

    "github.com/d60-Lab/bookers/config"
    "github.com/d60-Lab/bookers/internal/app"
    "github.com/d60-Lab/bookers/internal/model"
    "github.com/d60-Lab/bookers/internal/repository"
    "github.com/d60-Lab/bookers/internal/service"
    "github.com/d60-Lab/bookers/pkg/logger"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func envInt(name string, def int) int {
    if s := os.Getenv(name); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 { return n }
    }
    return def
}

// register 注册演示用户；名字已存在时按邮箱登录复用
func register(ctx context.Context, a *app.App, name string) (*model.User, error) {
    in := service.RegisterInput{Name: name, Email: name + "@example.com", Password: "password", Introduction: "seeded user"}
    u, err := a.Users.Register(ctx, in)
    if errors.Is(err, repository.ErrNameTaken) || errors.Is(err, repository.ErrEmailTaken) {
        _, u, err = a.Users.Login(ctx, in.Email, in.Password)
    }
    return u, err
}

func main() {
    cfg := must(config.Load())
    if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil { panic(err) }
    defer logger.Sync()

    ctx := context.Background()
    a := must(app.New(ctx, cfg))

    N := envInt("N", 100)
    CONC := envInt("CONC", 4)
    BOOKS := envInt("BOOKS", 5)

    // celebrity 被所有人关注，并回关前 10 人以便打开私信
    celeb := must(register(ctx, a, "celebrity"))
    users := make([]*model.User, 0, N)
    for i := 0; i < N; i++ {
        u, err := register(ctx, a, fmt.Sprintf("reader%05d", i))
        if err != nil {
            logger.Warn("seed user", zap.Int("i", i), zap.Error(err))
            continue
        }
        users = append(users, u)
    }

    // follow with CONC workers
    followCh := make(chan time.Duration, len(users))
    feed := make(chan *model.User, len(users))
    for _, u := range users { feed <- u }
    close(feed)
    workers := CONC
    if workers > len(users) { workers = len(users) }
    done := make(chan struct{}, workers)
    t0 := time.Now()
    for w := 0; w < workers; w++ {
        go func() {
            for u := range feed {
                st := time.Now()
                if err := a.Relations.Follow(ctx, u.ID, celeb.ID); err != nil {
                    logger.Warn("seed follow", zap.String("user", u.ID), zap.Error(err))
                }
                followCh <- time.Since(st)
            }
            done <- struct{}{}
        }()
    }
    for w := 0; w < workers; w++ { <-done }
    close(followCh)
    followDur := time.Since(t0)
    followRecs := make([]time.Duration, 0, len(users))
    for d := range followCh { followRecs = append(followRecs, d) }

    for i := 0; i < len(users) && i < 10; i++ {
        _ = a.Relations.Follow(ctx, celeb.ID, users[i].ID)
        if room, err := a.Chats.OpenRoom(ctx, celeb.ID, users[i].ID); err == nil {
            _, _ = a.Chats.Send(ctx, users[i].ID, room.ID, "thanks for the follow back")
        }
    }

    // books viewed by every reader; views land through the recorder
    viewMetrics := a.Recorder.Metrics()
    viewRecs := make([]time.Duration, 0, len(users)*BOOKS)
    doneViews := make(chan struct{})
    collected := make(chan struct{})
    go func() {
        defer close(collected)
        for {
            select {
            case d := <-viewMetrics:
                viewRecs = append(viewRecs, d)
            case <-doneViews:
                return
            }
        }
    }()
    maxQ := 0
    quitSample := make(chan struct{})
    sampled := make(chan struct{})
    go func() {
        defer close(sampled)
        ticker := time.NewTicker(50 * time.Millisecond)
        defer ticker.Stop()
        for {
            select {
            case <-ticker.C:
                if q := a.Recorder.QueueLen(); q > maxQ { maxQ = q }
            case <-quitSample:
                return
            }
        }
    }()
    for b := 0; b < BOOKS; b++ {
        book, err := a.Books.Create(ctx, celeb.ID, fmt.Sprintf("Book %d", b+1), "seeded book")
        if err != nil {
            logger.Warn("seed book", zap.Error(err))
            continue
        }
        for _, u := range users {
            _, _ = a.Books.Get(ctx, book.ID, u.ID)
        }
        if len(users) > 0 {
            _, _ = a.Books.AddComment(ctx, users[0].ID, book.ID, "great read")
            _ = a.Books.Favorite(ctx, users[0].ID, book.ID)
        }
    }

    close(quitSample)
    <-sampled

    // membership checks (cached when redis is enabled)
    if a.Cache != nil { a.Cache.ResetCounters() }
    q0 := time.Now()
    for _, u := range users {
        _, _ = a.Relations.IsFollowing(ctx, u.ID, celeb.ID)
    }
    checkDur := time.Since(q0)

    drainStart := time.Now()
    stopCtx, cancel := context.WithTimeout(ctx, time.Minute)
    defer cancel()
    if err := a.Close(stopCtx); err != nil { logger.Error("close app", zap.Error(err)) }
    drainDur := time.Since(drainStart)
    close(doneViews)
    <-collected

    pct := func(vs []time.Duration, p float64) time.Duration {
        if len(vs) == 0 { return 0 }
        xs := append([]time.Duration(nil), vs...)
        sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
        k := int(math.Ceil(p*float64(len(xs)))) - 1
        if k < 0 { k = 0 }
        if k >= len(xs) { k = len(xs)-1 }
        return xs[k]
    }

    fmt.Printf("users=%d, CONC=%d, BOOKS=%d\n", len(users), CONC, BOOKS)
    if n := len(followRecs); n > 0 {
        fmt.Printf("Follow latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
            followDur, followDur/time.Duration(n), pct(followRecs, 0.50), pct(followRecs, 0.95), pct(followRecs, 0.99))
        fmt.Printf("IsFollowing x%d: %v\n", n, checkDur)
    }
    if a.Cache != nil {
        c := a.Cache.Counters()
        fmt.Printf("Followings cache: hits=%d, loads=%d\n", c.Hits, c.Loads)
    }
    if len(viewRecs) > 0 {
        fmt.Printf("View landing: samples=%d, p50=%v, p95=%v, p99=%v, maxQueue=%d, drain=%v\n",
            len(viewRecs), pct(viewRecs, 0.50), pct(viewRecs, 0.95), pct(viewRecs, 0.99), maxQ, drainDur)
    }
}
