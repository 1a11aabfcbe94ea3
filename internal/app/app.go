// Package app wires the resolver, engine, store, notifier, and shutdown
// executor together, recovers persisted tasks at startup, and owns the
// engine event loop.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	logx "github.com/duantianjun/qtshut/pkg/logx"

	"github.com/duantianjun/qtshut/internal/config"
	"github.com/duantianjun/qtshut/internal/countdown"
	"github.com/duantianjun/qtshut/internal/notify"
	rtsup "github.com/duantianjun/qtshut/internal/runtime/supervisor"
	"github.com/duantianjun/qtshut/internal/shutdown"
	"github.com/duantianjun/qtshut/internal/task"
	"github.com/duantianjun/qtshut/internal/taskstore"
	"github.com/duantianjun/qtshut/internal/timeparse"

	"golang.org/x/time/rate"
)

type App struct {
	cfgPath       string
	forceSimulate bool

	cfgm *config.Manager
	sup  *rtsup.Supervisor

	log  logx.Logger
	logs *logx.Service

	resolver *timeparse.Resolver
	store    taskstore.Store
	engine   *countdown.Engine
	notif    *notify.Service

	system shutdown.Executor
	dryRun *shutdown.Simulator

	// mu guards the reloadable knobs below.
	mu       sync.Mutex
	simulate bool
	grace    time.Duration
}

// New builds a fully wired but not yet started application.
// forceSimulate overrides the config and keeps every run a dry run.
func New(cfgPath string, forceSimulate bool) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(cfg.LogConfig())
	log = log.With(logx.String("comp", "app"))

	store, err := taskstore.Open(cfg.StoreConfig(), log.With(logx.String("comp", "store")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("open task store: %w", err)
	}

	a := &App{
		cfgPath:       cfgPath,
		forceSimulate: forceSimulate,
		cfgm:          cfgm,
		log:           log,
		logs:          logSvc,
		resolver:      timeparse.NewResolver(),
		store:         store,
		engine:        countdown.New(log.With(logx.String("comp", "countdown"))),
		notif:         notify.New(cfg.NotifyConfig(), log.With(logx.String("comp", "notify"))),
		system:        shutdown.NewSystem(log.With(logx.String("comp", "shutdown"))),
		dryRun:        shutdown.NewSimulator(log.With(logx.String("comp", "shutdown"))),
		simulate:      cfg.Shutdown.Simulate,
		grace:         cfg.GraceDuration(),
	}
	return a, nil
}

func (a *App) Resolver() *timeparse.Resolver { return a.resolver }
func (a *App) Status() countdown.Status      { return a.engine.Status() }

// Start recovers any persisted task and launches the event and config
// loops under the supervisor.
func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx, rtsup.WithLogger(a.log))

	if err := a.recover(ctx); err != nil {
		// Recovery is best-effort; a bad record was already cleared.
		a.log.Warn("task recovery incomplete", logx.Err(err))
	}

	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.sup.Go("config.watch", a.cfgm.Watch)
	a.sup.Go0("config.apply", a.applyLoop)

	// Subscribe before the loop goroutine is scheduled, so events published
	// right after Start returns are buffered rather than missed.
	events, unsubscribe := a.engine.Subscribe(16)
	a.sup.Go0("engine.events", func(ctx context.Context) {
		a.eventLoop(ctx, events, unsubscribe)
	})

	a.log.Info("started", logx.String("config", a.cfgPath), logx.Bool("simulate", a.simulating()))
	return nil
}

// Stop cancels the loops and releases the store and log sinks.
func (a *App) Stop(ctx context.Context) error {
	var err error
	if a.sup != nil {
		err = a.sup.Stop(ctx)
	}
	a.engine.Reset()
	if cerr := a.store.Close(); cerr != nil && err == nil {
		err = cerr
	}
	_ = a.logs.Close()
	return err
}

// Schedule validates the resolved input, persists a descriptor for it,
// and starts the countdown. It returns the concrete target instant.
func (a *App) Schedule(ctx context.Context, in timeparse.TimeInput) (time.Time, error) {
	now := time.Now()
	if err := a.resolver.ValidateSchedule(in, now); err != nil {
		return time.Time{}, err
	}

	var (
		desc   task.Descriptor
		target time.Time
	)
	switch in.Kind {
	case timeparse.KindDuration:
		target = now.Add(in.Span)
		desc = task.Once(target, now)
	case timeparse.KindAbsolute:
		target = in.At
		desc = task.Once(target, now)
	case timeparse.KindDaily:
		next, err := in.Daily.Next(now)
		if err != nil {
			return time.Time{}, err
		}
		target = next
		desc = task.Daily(in.Daily, now)
	default:
		return time.Time{}, fmt.Errorf("unknown input kind %d", in.Kind)
	}

	if err := a.store.Save(ctx, desc); err != nil {
		return time.Time{}, fmt.Errorf("persist task: %w", err)
	}
	if err := a.engine.Start(target, &desc); err != nil {
		_ = a.store.Clear(ctx)
		return time.Time{}, err
	}
	a.log.Info("task scheduled",
		logx.String("kind", desc.Kind.String()),
		logx.Time("target", target),
		logx.String("when", a.resolver.FormatInput(in, now)),
	)
	return target, nil
}

// Cancel aborts the live countdown and clears the persisted record. The
// record is cleared here rather than on the Cancelled event, which also fires
// when Start replaces a live run and must not touch a freshly committed task.
func (a *App) Cancel() {
	live := a.engine.Status().Phase == countdown.PhaseRunning
	a.engine.Cancel()
	if !live {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn("clear task after cancel failed", logx.Err(err))
	}
	a.notif.Send(ctx, "定时关机已取消")
}

// recover restores a persisted task after a restart. A once task whose
// target already passed is dropped; a daily task is re-armed for its
// next occurrence. Any failure clears the record so a broken task never
// wedges startup.
func (a *App) recover(ctx context.Context) error {
	desc, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if desc == nil {
		return nil
	}
	if !desc.Enabled {
		a.log.Info("persisted task is disabled; clearing")
		return a.store.Clear(ctx)
	}

	now := time.Now()
	target, err := desc.NextOccurrence(now)
	if err != nil {
		a.log.Warn("persisted task is invalid; clearing", logx.Err(err))
		return a.store.Clear(ctx)
	}
	if desc.Kind == task.KindOnce && !target.After(now) {
		a.log.Info("persisted task expired while offline; clearing", logx.Time("target", target))
		return a.store.Clear(ctx)
	}

	if err := a.engine.Start(target, desc); err != nil {
		a.log.Warn("persisted task could not be resumed; clearing", logx.Err(err))
		return a.store.Clear(ctx)
	}
	a.log.Info("task recovered",
		logx.String("kind", desc.Kind.String()),
		logx.Time("target", target),
	)
	return nil
}

func (a *App) simulating() bool {
	if a.forceSimulate {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.simulate
}

func (a *App) graceDelay() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.grace
}

func (a *App) executor() shutdown.Executor {
	if a.simulating() {
		return a.dryRun
	}
	return a.system
}

// applyLoop applies hot config reloads: logging first so later messages
// use the new sinks, then the notifier and the reloadable knobs. Store
// driver changes need a restart and are only reported.
func (a *App) applyLoop(ctx context.Context) {
	ch := a.cfgm.Subscribe(4)
	defer a.cfgm.Unsubscribe(ch)

	prev := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-ch:
			if !ok || cfg == nil {
				return
			}
			changed, attrs := config.SummarizeChange(prev, cfg)
			a.logs.Apply(cfg.LogConfig())
			a.notif.Apply(cfg.NotifyConfig())
			a.mu.Lock()
			a.simulate = cfg.Shutdown.Simulate
			a.grace = cfg.GraceDuration()
			a.mu.Unlock()
			if prev != nil && prev.Store != cfg.Store {
				a.log.Warn("store config changed; restart required to take effect")
			}
			if len(changed) > 0 {
				a.log.Info("config applied", append(attrs, logx.Any("sections", changed))...)
			}
			prev = cfg
		}
	}
}

// eventLoop consumes engine events: throttled progress logging, completion
// handling including the power-off itself, and notifications. Persistence
// changes stay in the imperative paths (Schedule/Cancel/recover) plus task
// completion; a Cancelled event alone never touches the store.
func (a *App) eventLoop(ctx context.Context, events <-chan countdown.Update, unsubscribe func()) {
	defer unsubscribe()

	// Progress fires every second; log at most a few per minute.
	progLog := rate.NewLimiter(rate.Every(15*time.Second), 1)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case countdown.UpdateProgress:
				if progLog.Allow() {
					a.log.Info("countdown progress",
						logx.String("remaining", timeparse.FormatClock(ev.Remaining)),
						logx.Float64("percent", ev.Percent),
					)
				}
			case countdown.UpdatePaused:
				a.log.Info("countdown paused")
			case countdown.UpdateResumed:
				a.log.Info("countdown resumed")
			case countdown.UpdateCancelled:
				a.log.Info("countdown cancelled")
			case countdown.UpdateFinished:
				a.log.Info("countdown finished")
			case countdown.UpdateTaskCompleted:
				a.completeTask(ctx, ev.Task)
			case countdown.UpdateError:
				a.notif.Send(ctx, "定时关机失败: "+ev.Err)
			}
		}
	}
}

// completeTask runs the terminal action for a finished countdown. A once
// task is cleared; a daily task is kept and re-armed (dry runs keep the
// process alive, and a real shutdown re-arms from the store on next boot).
func (a *App) completeTask(ctx context.Context, desc *task.Descriptor) {
	exec := a.executor()
	a.notif.Send(ctx, "倒计时结束，即将关机 ("+exec.Describe()+")")

	if delay := a.graceDelay(); delay > 0 {
		a.log.Info("grace delay before shutdown", logx.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err := exec.Shutdown(sctx)
	cancel()
	if err != nil {
		a.log.Error("shutdown failed", logx.Err(err), logx.String("via", exec.Describe()))
		a.engine.ReportError(err.Error())
		return
	}

	if desc == nil || desc.Kind == task.KindOnce {
		if err := a.store.Clear(ctx); err != nil {
			a.log.Warn("clear task after completion failed", logx.Err(err))
		}
		return
	}

	// Daily task: schedule the next occurrence.
	next, err := desc.NextOccurrence(time.Now())
	if err != nil {
		a.log.Warn("daily task re-arm failed", logx.Err(err))
		return
	}
	if err := a.engine.Start(next, desc); err != nil {
		a.log.Warn("daily task re-arm failed", logx.Err(err))
		return
	}
	a.log.Info("daily task re-armed", logx.Time("target", next))
}
