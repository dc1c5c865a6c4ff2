package domains

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bitleak/lmstfy/client"
	"github.com/google/uuid"

	"olp/backend/internal/domains/common"
	"olp/backend/internal/domains/common/job"
	"olp/backend/internal/domains/common/response"
	"olp/backend/pkg/lmstfyx"
	"olp/backend/pkg/logger"
)

// GetProcess returns the processing function injected into the worker's
// Processor: parse the envelope, route by action type, run the handler
// with panic isolation, and translate the response into a queue action.
func GetProcess(log logger.Logger, deps *common.Deps) lmstfyx.Proc {
	return func(ctx context.Context, lmstfyJob *client.Job) *lmstfyx.JobResp {
		startTime := time.Now()

		meta, bizPayload, err := parseJob(ctx, lmstfyJob, log)
		if err != nil {
			log.Errorf(ctx, "[GetProcess] parseJob failed: %v", err)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		ctx = context.WithValue(ctx, logger.CtxTraceID, meta.RequestID)
		ctx = context.WithValue(ctx, logger.CtxActionType, meta.ActionType)

		log.Infof(ctx, "[GetProcess] Processing job: action_type=%s, request_id=%s, id=%s",
			meta.ActionType, meta.RequestID, meta.ID)

		handlerFunc, ok := HandlerMap[meta.ActionType]
		if !ok {
			log.Errorf(ctx, "[GetProcess] handler not found for action_type: %s", meta.ActionType)
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
		}

		var resp *lmstfyx.JobResp
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf(ctx, "[GetProcess] handler panic: %v", r)
					resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
				}
			}()

			handler, err := handlerFunc(ctx, meta, bizPayload, deps)
			if err != nil {
				log.Errorf(ctx, "[GetProcess] handler creation failed: %v", err)
				resp = &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
				return
			}

			handlerResp := handler.GetProcess()
			resp = doJobReport(ctx, handlerResp, log)
		}()

		duration := time.Since(startTime)
		log.Infof(ctx, "[GetProcess] Processing complete: action=%d, duration=%v", resp.Action, duration)

		return resp
	}
}

// parseJob decodes the standard envelope and extracts the metadata.
func parseJob(ctx context.Context, lmstfyJob *client.Job, log logger.Logger) (*job.Meta, interface{}, error) {
	var standardJob job.Job
	if err := json.Unmarshal(lmstfyJob.Data, &standardJob); err != nil {
		return nil, nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	if standardJob.Payload == nil || standardJob.Payload.Data == nil {
		return nil, nil, fmt.Errorf("invalid job structure: payload.data is nil")
	}

	data := standardJob.Payload.Data

	meta := &job.Meta{
		RequestID:  data.RequestID,
		ActionType: data.ActionType,
		ID:         data.ID,
	}

	if meta.RequestID == "" {
		meta.RequestID = uuid.New().String()
	}

	bizPayload := data.Data

	log.Debugf(ctx, "[parseJob] Parsed: action_type=%s, request_id=%s, id=%s",
		meta.ActionType, meta.RequestID, meta.ID)

	return meta, bizPayload, nil
}

// doJobReport maps the handler response to a queue action. Retryable
// failures are released for redelivery; everything else is ACKed, with
// permanent failures already recorded on the durable queue entry.
func doJobReport(ctx context.Context, resp *response.Response, log logger.Logger) *lmstfyx.JobResp {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Errorf(ctx, "[doJobReport] marshal response failed: %v", err)
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury}
	}

	if resp.Error != nil {
		if resp.Error.Retryable {
			return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusRelease, Data: data}
		}
		return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusBury, Data: data}
	}

	return &lmstfyx.JobResp{Action: lmstfyx.JobRespStatusSuccess, Data: data}
}
