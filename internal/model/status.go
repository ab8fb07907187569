package model

import "time"

type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

func statusOf(deletedAt *time.Time) RecordStatus {
	if deletedAt != nil {
		return StatusDeleted
	}
	return StatusActive
}
