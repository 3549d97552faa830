package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"debtwatch/internal/config"
	"debtwatch/internal/logging"
	"debtwatch/internal/notifications"
	"debtwatch/internal/services/debtapi"
	"debtwatch/internal/state"
	"debtwatch/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *state.Store
	storeErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureStore() (*state.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = state.Open(cfg)
	})
	return c.store, c.storeErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// notifier builds the notification service for the given concern toggle. A
// disabled concern gets the no-op service so call sites stay unconditional.
func (c *commandContext) notifier(out io.Writer, enabled bool) notifications.Service {
	if !enabled {
		return notifications.Noop()
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return notifications.Noop()
	}
	return notifications.NewService(cfg, out, colorizeWriter(out))
}

// uploadNotifier honors the uploads and errors toggles independently:
// success/info lines follow notifications.uploads, warnings and failures
// follow notifications.errors.
func (c *commandContext) uploadNotifier(out io.Writer) notifications.Service {
	cfg, err := c.ensureConfig()
	if err != nil {
		return notifications.Noop()
	}
	uploads := cfg.Notifications.Uploads
	failures := cfg.Notifications.Errors
	if !uploads && !failures {
		return notifications.Noop()
	}
	base := notifications.NewService(cfg, out, colorizeWriter(out))
	if uploads && failures {
		return base
	}
	return notifications.Filter(base, func(severity notifications.Severity) bool {
		switch severity {
		case notifications.SeverityError, notifications.SeverityWarning:
			return failures
		default:
			return uploads
		}
	})
}

func (c *commandContext) apiClient() (debtapi.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.API.RequestTimeout) * time.Second,
	}
	return debtapi.NewHTTPClient(cfg.API.BaseURL, cfg.API.Token, httpClient), nil
}

// orchestrator hydrates a workflow orchestrator from the state store. The
// navigator prints each step change's target path to the given writer.
func (c *commandContext) orchestrator(nav workflow.Navigator) (*workflow.Orchestrator, error) {
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	opts := []workflow.OrchestratorOption{workflow.WithLogger(logger)}
	if nav != nil {
		opts = append(opts, workflow.WithNavigator(nav))
	}
	return workflow.NewOrchestrator(workflowStore{store}, opts...), nil
}

func (c *commandContext) close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// workflowStore adapts *state.Store to the orchestrator's context-free
// persistence interface.
type workflowStore struct {
	store *state.Store
}

func (w workflowStore) LoadWorkflowState() ([]byte, bool, error) {
	return w.store.LoadWorkflowState(context.Background())
}

func (w workflowStore) SaveWorkflowState(payload []byte) error {
	return w.store.SaveWorkflowState(context.Background(), payload)
}

func (w workflowStore) ClearWorkflowState() error {
	return w.store.ClearWorkflowState(context.Background())
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
