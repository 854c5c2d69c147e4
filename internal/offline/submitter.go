package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"classbook/config"
	"classbook/internal/domains/reservation/model/dto"
	"classbook/shared/constant"
	"classbook/shared/failure"
)

//go:generate go run go.uber.org/mock/mockgen -source=./submitter.go -destination=./mocks/submitter_mock.go -package=mocks

// Submitter replays a queued booking through the server submission path.
type Submitter interface {
	Submit(ctx context.Context, req dto.SubmitReservationRequest) error
}

type httpSubmitter struct {
	client    *http.Client
	serverURL string
	token     string
}

func NewHTTPSubmitter(cfg *config.Config) Submitter {
	timeout := time.Duration(cfg.Offline.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &httpSubmitter{
		client:    &http.Client{Timeout: timeout},
		serverURL: cfg.Offline.ServerURL,
		token:     cfg.Offline.Token,
	}
}

type errorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Submit posts the booking and translates the server's answer into the
// failure taxonomy so the sync loop can classify it. Anything that never
// reached a decision (network error, 5xx, timeout) comes back transient.
func (s *httpSubmitter) Submit(ctx context.Context, req dto.SubmitReservationRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/v1/reservations", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build submission request: %w", err)
	}

	httpReq.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	httpReq.Header.Set(constant.RequestHeaderIdempotencyKey, req.IdempotencyKey)

	if s.token != "" {
		httpReq.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+s.token)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return failure.Transient(fmt.Errorf("server unreachable: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error
	if message == "" {
		message = envelope.Message
	}
	if message == "" {
		message = resp.Status
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return failure.SyncConflict(message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return failure.BadRequestFromString(message)
	case http.StatusUnauthorized, http.StatusForbidden:
		return failure.Unauthorized(message)
	default:
		return failure.Transient(errors.New(message))
	}
}
