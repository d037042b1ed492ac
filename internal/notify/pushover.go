// Package notify fires a Pushover alert when a calculated SLA falls
// below a configured floor, adapted from the teacher's
// internal/notifications/pushover.go check-state-change notifier.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"text/template"
	"time"

	"github.com/sirupsen/logrus"

	"monavail/internal/config"
)

const (
	pushoverAPIURL = "https://api.pushover.net/1/messages.json"
	userAgent      = "monavail/1.0"
)

// BreachEvent describes one SLA-floor breach for a host or service.
type BreachEvent struct {
	Host      string
	Service   string // empty for a host-only breach
	Percent   float64
	Floor     float64
	Timestamp time.Time
}

func (b BreachEvent) entity() string {
	if b.Service == "" {
		return b.Host
	}
	return b.Host + "/" + b.Service
}

// Service sends breach notifications via Pushover, queued on a
// buffered channel and drained by one background goroutine so callers
// never block on network I/O, mirroring how the teacher's engine
// invokes its pushover client fire-and-forget.
type Service struct {
	cfg        *config.NotifyConfig
	httpClient *http.Client
	templates  map[string]*template.Template
	mu         sync.RWMutex

	queue chan BreachEvent
	done  chan struct{}
}

// New creates a notification service and starts its delivery
// goroutine. Call Close to drain and stop it.
func New(cfg *config.NotifyConfig) (*Service, error) {
	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		templates:  make(map[string]*template.Template),
		queue:      make(chan BreachEvent, 64),
		done:       make(chan struct{}),
	}

	if cfg.Enabled && cfg.Pushover.Enabled {
		if err := s.parseTemplates(); err != nil {
			return nil, fmt.Errorf("notify: parse templates: %w", err)
		}
	}

	go s.run()

	logrus.WithFields(logrus.Fields{
		"enabled":  cfg.Enabled,
		"pushover": cfg.Pushover.Enabled,
		"sla_floor": cfg.SLAFloor,
	}).Info("notification service initialized")

	return s, nil
}

func (s *Service) run() {
	for {
		select {
		case evt, ok := <-s.queue:
			if !ok {
				close(s.done)
				return
			}
			if err := s.deliver(context.Background(), evt); err != nil {
				logrus.WithError(err).WithField("entity", evt.entity()).Error("failed to deliver SLA breach notification")
			}
		}
	}
}

// Close stops accepting new events and waits for the queue to drain.
func (s *Service) Close() {
	close(s.queue)
	<-s.done
}

// NotifyBreach enqueues a breach event. It never blocks the caller
// beyond the channel buffer; a full queue drops the event and logs it.
func (s *Service) NotifyBreach(evt BreachEvent) {
	if !s.cfg.Enabled || !s.cfg.Pushover.Enabled {
		return
	}
	select {
	case s.queue <- evt:
	default:
		logrus.WithField("entity", evt.entity()).Warn("notification queue full, dropping SLA breach event")
	}
}

func (s *Service) deliver(ctx context.Context, evt BreachEvent) error {
	if s.inQuietHours() {
		logrus.WithField("entity", evt.entity()).Debug("skipping notification during quiet hours")
		return nil
	}

	message, err := s.buildMessage(evt)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	return s.send(ctx, message)
}

func (s *Service) inQuietHours() bool {
	qh := s.cfg.Pushover.QuietHours
	if qh == nil || !qh.Enabled {
		return false
	}

	loc, err := time.LoadLocation(qh.Timezone)
	if err != nil {
		loc = time.UTC
	}
	hour := time.Now().In(loc).Hour()

	if qh.StartHour <= qh.EndHour {
		return hour >= qh.StartHour && hour < qh.EndHour
	}
	return hour >= qh.StartHour || hour < qh.EndHour
}

type pushoverMessage struct {
	Token     string `json:"token"`
	User      string `json:"user"`
	Message   string `json:"message"`
	Title     string `json:"title,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	Retry     int    `json:"retry,omitempty"`
	Expire    int    `json:"expire,omitempty"`
	Sound     string `json:"sound,omitempty"`
	Device    string `json:"device,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type pushoverResponse struct {
	Status int      `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

func (s *Service) buildMessage(evt BreachEvent) (*pushoverMessage, error) {
	data := map[string]interface{}{
		"Host":      evt.Host,
		"Service":   evt.Service,
		"Entity":    evt.entity(),
		"Percent":   fmt.Sprintf("%.3f", evt.Percent),
		"Floor":     fmt.Sprintf("%.3f", evt.Floor),
		"Timestamp": evt.Timestamp.Format("2006-01-02 15:04:05"),
	}

	title, err := s.renderTemplate("title", s.cfg.Pushover.Title, data)
	if err != nil {
		return nil, fmt.Errorf("render title: %w", err)
	}
	body, err := s.renderTemplate("message", s.cfg.Pushover.Template, data)
	if err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}

	msg := &pushoverMessage{
		Token:     s.cfg.Pushover.APIToken,
		User:      s.cfg.Pushover.UserKey,
		Title:     title,
		Message:   body,
		Priority:  s.cfg.Pushover.Priority,
		Sound:     s.cfg.Pushover.Sound,
		Device:    s.cfg.Pushover.Device,
		Timestamp: evt.Timestamp.Unix(),
	}
	if s.cfg.Pushover.Priority == 2 {
		msg.Retry = s.cfg.Pushover.Retry
		msg.Expire = s.cfg.Pushover.Expire
	}

	return msg, nil
}

func (s *Service) renderTemplate(name, text string, data map[string]interface{}) (string, error) {
	s.mu.RLock()
	tmpl, ok := s.templates[name]
	s.mu.RUnlock()
	if !ok {
		var err error
		tmpl, err = template.New(name).Parse(text)
		if err != nil {
			return "", fmt.Errorf("parse template %s: %w", name, err)
		}
		s.mu.Lock()
		s.templates[name] = tmpl
		s.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (s *Service) send(ctx context.Context, msg *pushoverMessage) error {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pushoverAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var pr pushoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if pr.Status != 1 {
		return fmt.Errorf("pushover API error: %v", pr.Errors)
	}

	logrus.WithFields(logrus.Fields{
		"title":    msg.Title,
		"priority": msg.Priority,
	}).Info("pushover notification sent")

	return nil
}

func (s *Service) parseTemplates() error {
	titleTmpl, err := template.New("title").Parse(s.cfg.Pushover.Title)
	if err != nil {
		return fmt.Errorf("parse title template: %w", err)
	}
	s.templates["title"] = titleTmpl

	msgTmpl, err := template.New("message").Parse(s.cfg.Pushover.Template)
	if err != nil {
		return fmt.Errorf("parse message template: %w", err)
	}
	s.templates["message"] = msgTmpl

	return nil
}
