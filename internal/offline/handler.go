package offline

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// MessagePath is where pages post lifecycle messages.
const MessagePath = "/__offline/message"

// maxMessageSize bounds the body of a lifecycle message
const maxMessageSize = 1024

// Handler puts the runtime's active worker between clients and the network.
// Without an active worker every request goes straight to the network.
type Handler struct {
	runtime *Runtime
	network Fetcher
	log     logrus.FieldLogger
}

// NewHandler creates the proxy handler.
func NewHandler(rt *Runtime, network Fetcher, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = discardLogger()
	}
	return &Handler{runtime: rt, network: network, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == MessagePath {
		h.handleMessage(w, r)
		return
	}

	worker := h.runtime.Active()
	if worker == nil {
		h.passThrough(w, r)
		return
	}

	resp, err := worker.Respond(r.Context(), r)
	switch {
	case errors.Is(err, ErrPassThrough):
		h.passThrough(w, r)
	case err != nil:
		h.log.WithError(err).WithField("url", RequestKey(r.URL)).Warn("offline request failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		resp.WriteTo(w)
	}
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, "failed to read message", http.StatusBadRequest)
		return
	}
	msg := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if err := h.runtime.PostMessage(r.Context(), msg); err != nil {
		if errors.Is(err, ErrUnknownMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.WithError(err).Error("lifecycle message failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// passThrough streams the network response without touching the cache.
func (h *Handler) passThrough(w http.ResponseWriter, r *http.Request) {
	resp, err := h.network.Fetch(r.Context(), r)
	if err != nil {
		h.log.WithError(err).WithField("url", RequestKey(r.URL)).Warn("network request failed")
		http.Error(w, "network unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = append([]string(nil), v...)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
