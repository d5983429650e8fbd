package service

import (
    "context"
    "sync"
    "time"

    "go.uber.org/zap"

    "github.com/d60-Lab/bookers/internal/repository"
    "github.com/d60-Lab/bookers/pkg/logger"
)

type viewJob struct {
    userID string
    bookID string
    enqAt  time.Time
}

// ViewRecorder 浏览记录异步落库：有界队列 + 固定数量 worker，队列满时丢弃
type ViewRecorder struct {
    views     repository.ViewCountRepository
    ch        chan viewJob
    metricsCh chan time.Duration
    wg        sync.WaitGroup
}

func NewViewRecorder(views repository.ViewCountRepository, queueSize int) *ViewRecorder {
    if queueSize <= 0 {
        queueSize = 10000
    }
    return &ViewRecorder{views: views, ch: make(chan viewJob, queueSize), metricsCh: make(chan time.Duration, 1024)}
}

// Start 启动 worker，返回停止函数；停止时先排空队列再退出
func (r *ViewRecorder) Start(workers int) func(context.Context) error {
    if workers <= 0 {
        workers = 4
    }
    stopCh := make(chan struct{})
    for i := 0; i < workers; i++ {
        r.wg.Add(1)
        go func() {
            defer r.wg.Done()
            for {
                select {
                case job := <-r.ch:
                    r.handle(job)
                case <-stopCh:
                    for {
                        select {
                        case job := <-r.ch:
                            r.handle(job)
                        default:
                            return
                        }
                    }
                }
            }
        }()
    }

    var once sync.Once
    return func(ctx context.Context) error {
        once.Do(func() { close(stopCh) })
        done := make(chan struct{})
        go func() {
            r.wg.Wait()
            close(done)
        }()
        select {
        case <-done:
            return nil
        case <-ctx.Done():
            return ctx.Err()
        }
    }
}

func (r *ViewRecorder) handle(job viewJob) {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := r.views.Create(ctx, job.userID, job.bookID); err != nil {
        logger.Warn("record view failed", zap.String("user", job.userID), zap.String("book", job.bookID), zap.Error(err))
        return
    }
    select {
    case r.metricsCh <- time.Since(job.enqAt):
    default:
    }
}

// Record 入队一次浏览，不阻塞调用方
func (r *ViewRecorder) Record(userID, bookID string) {
    select {
    case r.ch <- viewJob{userID: userID, bookID: bookID, enqAt: time.Now()}:
    default:
        logger.Warn("view recorder queue full, drop", zap.String("user", userID), zap.String("book", bookID))
    }
}

// Metrics 返回落库耗时的只读通道（每处理一条发送一次 duration，满时丢弃）。
func (r *ViewRecorder) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (r *ViewRecorder) QueueLen() int { return len(r.ch) }
