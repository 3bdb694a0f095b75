package worker

import (
	"path"
	"time"
)

func getResultsKey(task *Task) string {
	return path.Join("tagged", task.message.ID+".txt")
}

const RFC3339Micro = "2006-01-02T15:04:05.000000-07:00"

func getFormattedNow() *string {
	now := time.Now().UTC().Format(RFC3339Micro)
	return &now
}
