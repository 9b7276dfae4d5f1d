package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskAssignmentsSync = "assignments.sync"

type AssignmentsSyncPayload struct {
	Reason string `json:"reason"`
	DryRun bool   `json:"dryRun"`
}

func NewAssignmentsSyncTask(payload AssignmentsSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentsSync, data), nil
}

func ParseAssignmentsSyncPayload(task *asynq.Task) (AssignmentsSyncPayload, error) {
	var payload AssignmentsSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AssignmentsSyncPayload{}, err
	}
	return payload, nil
}
