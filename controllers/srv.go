package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"equipment_lending_portal/app"
	"equipment_lending_portal/db"
	"equipment_lending_portal/notify"
	"equipment_lending_portal/session"

	"github.com/google/uuid"
)

type Srv struct {
	Repo     *db.Repo
	AppSess  *session.AppSessionStore
	Cfg      app.Config
	Notifier *notify.Service
	Sched    *notify.Scheduler
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	mailer := notify.NewSMTPMailer(a.Config.SMTP)
	sweep := notify.NewSweep(repo, mailer)
	sched := notify.NewScheduler(sweep, a.RDB)
	sched.ReminderAt = a.Config.ReminderAt
	sched.OverdueAt = a.Config.OverdueAt

	return &Srv{
		Repo:     repo,
		AppSess:  a.AppSessions(),
		Cfg:      a.Config,
		Notifier: notify.NewService(repo, mailer),
		Sched:    sched,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID string) error {
	// 登录快照失败不阻塞登录
	_ = s.Repo.TouchUserLogin(ctx, userID, time.Now())
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.SessionTTL)
	return nil
}

// statusFor maps repo sentinels onto HTTP statuses: missing records are
// 404, invalid state and validation failures 400, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrEquipmentNotFound),
		errors.Is(err, db.ErrRequestNotFound),
		errors.Is(err, db.ErrUserNotFound),
		errors.Is(err, db.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrInsufficientQuantity),
		errors.Is(err, db.ErrDuplicateActiveRequest),
		errors.Is(err, db.ErrAlreadyProcessed),
		errors.Is(err, db.ErrNotBorrowed),
		errors.Is(err, db.ErrMissingReason),
		errors.Is(err, db.ErrMissingPurpose),
		errors.Is(err, db.ErrMissingReturnDate),
		errors.Is(err, db.ErrInvalidQuantity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *app.Ctx, err error) {
	c.JSON(statusFor(err), app.H{"error": err.Error()})
}
