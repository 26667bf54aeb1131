package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/username/jomkira/backend/src/agui"
	"github.com/username/jomkira/backend/src/guardrails"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/models"
)

type imageContextKey struct{}

// WithImage attaches an extracted image payload to the request context. The
// context dies with the request, so the payload cannot leak into another
// request.
func WithImage(ctx context.Context, image *models.ImageData) context.Context {
	return context.WithValue(ctx, imageContextKey{}, image)
}

// ImageFromContext retrieves the image extracted by the interception
// middleware, if any. Handlers pass it onward as an explicit parameter.
func ImageFromContext(ctx context.Context) *models.ImageData {
	image, _ := ctx.Value(imageContextKey{}).(*models.ImageData)
	return image
}

// GuardrailMiddleware intercepts every inbound POST before it reaches the
// agent runtime: it buffers the body, extracts user text and any embedded
// image payload, strips side-channel image fields for the schema-strict
// /agui route, runs the guardrail registry, and either short-circuits with
// a streamed error response or forwards a reconstructed request.
type GuardrailMiddleware struct {
	registry    *guardrails.Registry
	maxBodySize int64
}

// NewGuardrailMiddleware creates the interception middleware around an
// explicit registry. Tests construct isolated registries.
func NewGuardrailMiddleware(registry *guardrails.Registry, maxBodySize int64) *GuardrailMiddleware {
	return &GuardrailMiddleware{registry: registry, maxBodySize: maxBodySize}
}

// Handler wraps the downstream handler with the interception pipeline.
func (m *GuardrailMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Non-POST requests pass through untouched: no buffering, no
		// guardrail cost.
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		rawBody, err := io.ReadAll(http.MaxBytesReader(w, r.Body, m.maxBodySize))
		if err != nil {
			// Tolerated: proceed with whatever was read.
			logger.L.Debug("Error buffering request body", "error", err)
		}
		r.Body.Close()

		// Malformed bodies are tolerated; extraction proceeds with
		// "no text, no image".
		var bodyJSON map[string]any
		if len(rawBody) > 0 {
			if err := json.Unmarshal(rawBody, &bodyJSON); err != nil {
				logger.L.Debug("JSON parse error in middleware", "error", err)
				bodyJSON = nil
			}
		}

		isAGUIPath := strings.HasPrefix(r.URL.Path, "/agui")

		ctx := r.Context()
		forwardBody := rawBody
		if bodyJSON != nil {
			if image := agui.ExtractLastUserImage(bodyJSON); image != nil {
				logger.L.Info("Image extracted from request",
					"format", image.Format, "bytesLen", len(image.Bytes))
				ctx = WithImage(ctx, image)

				// The downstream AG-UI schema rejects unknown fields, so the
				// side-channel image fields must not reach it.
				if isAGUIPath {
					if cleaned := stripImageFields(rawBody); cleaned != nil {
						forwardBody = cleaned
					}
				}
			}

			if blocked, message := m.runGuardrails(r, bodyJSON); blocked {
				m.sendGuardrailResponse(w, message)
				return
			}
		}

		// Replay the buffered (original or cleaned) body as a single
		// logical read so downstream code observes an ordinary request.
		r.Body = io.NopCloser(bytes.NewReader(forwardBody))
		r.ContentLength = int64(len(forwardBody))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// runGuardrails evaluates the registry against the extracted text. Guardrail
// execution errors never abort the pipeline.
func (m *GuardrailMiddleware) runGuardrails(r *http.Request, bodyJSON map[string]any) (bool, string) {
	candidates := agui.ExtractLastUserMessage(bodyJSON)

	result := m.registry.RunAll(&guardrails.Context{
		Body:           bodyJSON,
		TextCandidates: candidates,
		Metadata:       map[string]any{"ip": r.RemoteAddr},
	})
	if !result.Passed {
		return true, result.ErrorMessage
	}
	return false, ""
}

// stripImageFields deep-copies the message list and removes the custom
// side-channel image fields (_image, plus any residual image field).
func stripImageFields(rawBody []byte) []byte {
	var cleaned map[string]any
	if err := json.Unmarshal(rawBody, &cleaned); err != nil {
		return nil
	}

	messages, ok := cleaned["messages"].([]any)
	if !ok {
		return nil
	}
	for _, item := range messages {
		if msg, ok := item.(map[string]any); ok {
			delete(msg, "_image")
			delete(msg, "image")
		}
	}

	out, err := json.Marshal(cleaned)
	if err != nil {
		return nil
	}
	return out
}

// sendGuardrailResponse short-circuits a blocked request with a well-formed
// AG-UI SSE stream. The failure is communicated inside the stream; the HTTP
// status stays 200.
func (m *GuardrailMiddleware) sendGuardrailResponse(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	builder := agui.NewSSEBuilder()
	for _, event := range builder.BuildTextResponse(message) {
		w.Write(agui.FormatSSE(event))
		if flusher != nil {
			flusher.Flush()
		}
	}
}
