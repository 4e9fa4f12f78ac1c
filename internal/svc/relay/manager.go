// If you are AI: This file implements the relay manager.
// Manages lifecycle of all relay tasks (start, stop, restart).

package relay

import (
	"context"
	"fmt"
	"log"
	"nonchalant/internal/config"
	"nonchalant/internal/core/bus"
	"sync"
)

// entry pairs a running task with the config mode used to create it, since
// the Task interface itself doesn't carry "push" vs "pull".
type entry struct {
	mode string
	task Task
}

// Manager manages relay tasks lifecycle.
type Manager struct {
	registry *bus.Registry
	tasks    []entry
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
}

// NewManager creates a new relay manager.
func NewManager(registry *bus.Registry) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		registry: registry,
		tasks:    make([]entry, 0),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// StartTasks starts all relay tasks from configuration.
func (m *Manager) StartTasks(cfg *config.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, relayCfg := range cfg.Relays {
		// Validate configuration
		if relayCfg.App == "" || relayCfg.Name == "" {
			return fmt.Errorf("relay config missing app or name")
		}
		if relayCfg.Mode != "pull" && relayCfg.Mode != "push" {
			return fmt.Errorf("invalid relay mode: %s (must be 'pull' or 'push')", relayCfg.Mode)
		}
		if relayCfg.RemoteURL == "" {
			return fmt.Errorf("relay config missing remote_url")
		}

		var task Task
		if relayCfg.Mode == "pull" {
			task = NewPullTask(m.registry, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect)
		} else {
			task = NewPushTask(m.registry, relayCfg.App, relayCfg.Name, relayCfg.RemoteURL, relayCfg.Reconnect)
		}

		m.tasks = append(m.tasks, entry{mode: relayCfg.Mode, task: task})

		// Start task in goroutine
		m.wg.Add(1)
		go func(t Task) {
			defer m.wg.Done()
			if err := t.Start(m.ctx); err != nil {
				log.Printf("relay: task %s/%s (%s) stopped: %v", t.App(), t.Name(), relayCfg.Mode, err)
			}
		}(task)
	}

	return nil
}

// Stop stops all relay tasks and waits for them to finish.
// FIXME: If a task cannot stop cleanly, it may block shutdown.
// Workaround: Use context timeout in caller.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Cancel context to signal all tasks to stop
	m.cancel()

	// Stop all tasks
	for _, e := range m.tasks {
		e.task.Stop()
	}

	// Wait for all tasks to finish
	m.wg.Wait()
	return nil
}

// TaskCount returns the number of active relay tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// TaskInfo is a snapshot of one relay task's identity and status, reported
// through the management API.
type TaskInfo struct {
	App       string `json:"app"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	RemoteURL string `json:"remote_url"`
	Running   bool   `json:"running"`
}

// GetTasks returns a snapshot of every relay task's status.
func (m *Manager) GetTasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	infos := make([]TaskInfo, 0, len(m.tasks))
	for _, e := range m.tasks {
		infos = append(infos, TaskInfo{
			App:       e.task.App(),
			Name:      e.task.Name(),
			Mode:      e.mode,
			RemoteURL: e.task.RemoteURL(),
			Running:   e.task.IsRunning(),
		})
	}
	return infos
}
