package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"equipment_lending_portal/dateutil"

	"github.com/redis/go-redis/v9"
)

// Scheduler fires the two sweep scans once a day at fixed wall-clock
// times. A Redis SetNX day-lock keeps multiple portal instances from
// double-running the same scan.
type Scheduler struct {
	Sweep *Sweep
	RDB   *redis.Client

	ReminderAt string // "HH:MM", default 08:00
	OverdueAt  string // "HH:MM", default 09:00

	stop chan struct{}
}

func NewScheduler(sweep *Sweep, rdb *redis.Client) *Scheduler {
	return &Scheduler{
		Sweep:      sweep,
		RDB:        rdb,
		ReminderAt: "08:00",
		OverdueAt:  "09:00",
		stop:       make(chan struct{}),
	}
}

func (sc *Scheduler) Start() {
	go sc.runDaily("due-reminders", sc.ReminderAt, sc.Sweep.CheckDueReminders)
	go sc.runDaily("overdue-check", sc.OverdueAt, sc.Sweep.CheckOverdueItems)
	log.Printf("notification scheduler started (reminders %s, overdue %s)", sc.ReminderAt, sc.OverdueAt)
}

func (sc *Scheduler) Stop() { close(sc.stop) }

func (sc *Scheduler) runDaily(name, at string, scan func(context.Context) error) {
	for {
		wait := untilNext(at, sc.Sweep.Now())
		timer := time.NewTimer(wait)
		select {
		case <-sc.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
		sc.RunLocked(context.Background(), name, scan)
	}
}

// RunLocked runs a scan under the per-day Redis lock. Manual triggers go
// through the same path so an admin trigger counts as today's run.
func (sc *Scheduler) RunLocked(ctx context.Context, name string, scan func(context.Context) error) {
	day := dateutil.StartOfDay(sc.Sweep.Now()).Format("2006-01-02")
	key := fmt.Sprintf("sweep:lock:%s:%s", name, day)

	if sc.RDB != nil {
		ok, err := sc.RDB.SetNX(ctx, key, "1", 24*time.Hour).Result()
		if err != nil {
			// Redis 不可用时照常执行，宁可重复也不要漏扫
			log.Printf("sweep %s: lock error, running anyway: %v", name, err)
		} else if !ok {
			log.Printf("sweep %s: already ran today, skipping", name)
			return
		}
	}

	if err := scan(ctx); err != nil {
		log.Printf("sweep %s: %v", name, err)
	}
}

// untilNext returns the duration until the next occurrence of the
// "HH:MM" wall-clock time, relative to now.
func untilNext(at string, now time.Time) time.Duration {
	t, err := time.Parse("15:04", at)
	if err != nil {
		t, _ = time.Parse("15:04", "08:00")
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
