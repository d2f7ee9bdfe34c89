package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadAnalyze = "leads.analyze"

type LeadAnalyzePayload struct {
	LeadID string `json:"leadId"`
	Source string `json:"source"`
}

func NewLeadAnalyzeTask(payload LeadAnalyzePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAnalyze, data), nil
}

func ParseLeadAnalyzePayload(task *asynq.Task) (LeadAnalyzePayload, error) {
	var payload LeadAnalyzePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadAnalyzePayload{}, err
	}
	return payload, nil
}
