package root

import (
	"context"
	"fmt"
	"strings"

	"hypeos/internal/storage"
)

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// matchPrefix picks the single id starting with prefix. An exact match wins.
func matchPrefix(kind, prefix string, ids []string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%s id is required", kind)
	}
	var hits []string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			hits = append(hits, id)
		}
	}
	switch len(hits) {
	case 0:
		return "", fmt.Errorf("no %s matches %q", kind, prefix)
	case 1:
		return hits[0], nil
	default:
		return "", fmt.Errorf("%q matches %d %ss, use more characters", prefix, len(hits), kind)
	}
}

func resolveTaskID(ctx context.Context, s *session, prefix string) (string, error) {
	tasks, err := s.svc.ListTasks(ctx, s.userID, storage.TaskFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return matchPrefix("task", prefix, ids)
}

func resolveGoalID(ctx context.Context, s *session, prefix string) (string, error) {
	goals, err := s.svc.ListGoals(ctx, s.userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(goals))
	for i, g := range goals {
		ids[i] = g.ID
	}
	return matchPrefix("goal", prefix, ids)
}
