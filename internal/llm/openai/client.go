package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tariffhub/tariff-ingest/internal/llm"
)

// ExtractRows implements llm.RowExtractor against an OpenAI-compatible
// chat/completions endpoint. One request, one attempt; retry policy lives
// in the orchestrator.
func (c *Client) ExtractRows(ctx context.Context, req llm.ExtractRequest) (llm.ExtractResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"source_ref", req.SourceRef,
		"text_len", len(req.Text),
		"has_image", len(req.Image) > 0,
	)

	schema := llm.BuildRowsJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        c.buildMessages(req, schema),
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.ExtractError{Reason: llm.ReasonUpstream, Err: err}
	}
	if status/100 != 2 {
		reason := llm.ClassifyStatus(status)
		c.logger.Error("llm.extract.bad_status",
			"req_id", rid, "status", status, "reason", string(reason),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.ExtractError{
			Reason: reason,
			Status: status,
			Err:    fmt.Errorf("non-2xx status: %d", status),
		}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.ExtractError{Reason: llm.ReasonMalformed, Status: status, Err: err}
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.ExtractError{
			Reason: llm.ReasonMalformed, Status: status,
			Err: fmt.Errorf("no choices in completion response"),
		}
	}
	content := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	// Sanitize first: coerce synonyms/number-typed rates, drop signal-free
	// rows. Then validate strictly against the schema we asked for.
	cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(content, c.logger)
	if sErr != nil {
		c.logger.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", sErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Raw: content}, &llm.ExtractError{Reason: llm.ReasonMalformed, Err: sErr}
	}
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{Raw: content}, &llm.ExtractError{Reason: llm.ReasonMalformed, Err: err}
	}

	var out struct {
		Rows     []llm.TariffRow `json:"rows"`
		PageText string          `json:"page_text"`
	}
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return llm.ExtractResult{Raw: content}, &llm.ExtractError{Reason: llm.ReasonMalformed, Err: err}
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"source_ref", req.SourceRef,
		"rows", len(out.Rows),
		"sanitized", len(dropped),
		"page_text_len", len(out.PageText),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.ExtractResult{Rows: out.Rows, PageText: out.PageText, Raw: cleaned}, nil
}

func (c *Client) buildMessages(req llm.ExtractRequest, schema map[string]any) []map[string]any {
	sys := buildSystemPrompt()
	schemaMsg := "JSON Schema:\n" + mustJSON(schema)

	if len(req.Image) > 0 {
		return []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": []map[string]any{
				{"type": "text", "text": buildUserImageNote(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
				{"type": "image_url", "image_url": map[string]any{"url": imageDataURL(req.Image, req.ImageMIME)}},
			}},
			{"role": "system", "content": schemaMsg},
		}
	}
	return []map[string]any{
		{"role": "system", "content": sys},
		{"role": "user", "content": buildUserText(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
		{"role": "system", "content": schemaMsg},
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
