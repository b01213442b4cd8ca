package ports

import (
	"context"
	"errors"
	"mission-circuit-service/internal/domain"
)

// ErrNotFound is returned by repositories when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Port: read access to missions and their tasks.
type MissionRepository interface {
	// Return the mission, or ErrNotFound.
	GetMission(ctx context.Context, missionID int64) (*domain.Mission, error)
	// Return the mission's tasks with their sites, ordered by task id.
	ListMissionTasks(ctx context.Context, missionID int64) ([]*domain.Task, error)
}

// Port: storage of generated circuits.
type CircuitRepository interface {
	// Return the mission's circuits with their segments, newest first.
	ListCircuits(ctx context.Context, missionID int64) ([]*domain.Circuit, error)
	// Atomically drop every circuit (and route) of the mission, persist the
	// first-task flag when requested, and store the planned circuit.
	// Implementations serialize concurrent calls for the same mission.
	ReplaceCircuits(ctx context.Context, plan *domain.CircuitPlan) (*domain.Circuit, error)
	// Drop every circuit (and route) of the mission under the same lock.
	DeleteCircuits(ctx context.Context, missionID int64) error
}

type MissionStore interface {
	MissionRepository
	CircuitRepository
}
