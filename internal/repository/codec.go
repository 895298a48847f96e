package repository

import (
	"encoding/json"
	"fmt"
	"taskKeeper/internal/models/task"
)

// Encode сериализует всю коллекцию одним JSON-массивом в порядке создания
func Encode(tasks []task.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("сериализация задач: %w", err)
	}
	return data, nil
}

func Decode(data []byte) ([]task.Task, error) {
	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("десериализация задач: %w", err)
	}
	return tasks, nil
}
