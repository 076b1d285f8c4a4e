package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"shortr/internal/platform/config"
)

const remotePath = "/evaluation-service/logs"

type remoteEntry struct {
	Stack   string `json:"stack"`
	Level   Level  `json:"level"`
	Package string `json:"package"`
	Message string `json:"message"`
}

// RemoteSink ships entries to the log collector. Delivery is fire-and-forget:
// failures are only reported on the local logger.
type RemoteSink struct {
	url    string
	stack  string
	client *http.Client
	wg     sync.WaitGroup
}

func NewRemoteSink(cfg config.RemoteConfig) *RemoteSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	stack := cfg.Stack
	if stack == "" {
		stack = "frontend"
	}
	return &RemoteSink{
		url:    strings.TrimRight(cfg.URL, "/") + remotePath,
		stack:  stack,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *RemoteSink) Send(level Level, section Section, msg string) {
	payload, err := json.Marshal(remoteEntry{
		Stack:   s.stack,
		Level:   level,
		Package: string(section),
		Message: msg,
	})
	if err != nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.deliver(payload); err != nil {
			log.Debug().Err(err).Str("package", string(section)).Msg("remote log delivery failed")
		}
	}()
}

func (s *RemoteSink) deliver(payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("collector returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until every pending delivery has finished.
func (s *RemoteSink) Wait() {
	s.wg.Wait()
}
