package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"policyinsight/internal/analysis"
	"policyinsight/internal/api/config"
	"policyinsight/internal/api/handler"
	"policyinsight/internal/api/server"
	"policyinsight/internal/cluster"
	"policyinsight/internal/llm"
	"policyinsight/internal/logging"
	"policyinsight/internal/narrative"
	feedbacksvc "policyinsight/internal/service/feedback"
	"policyinsight/internal/service/insight"
	policysvc "policyinsight/internal/service/policy"
)

type App struct {
	server  *server.Server
	gateway *llm.Gateway
	stores  *stores
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Init(os.Stderr, cfg.LogLevel)
	logging.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "store", cfg.StoreKind())

	// Dependencies
	st, err := initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gw := NewGateway(ctx, cfg.LLM)

	feedbackSvc := feedbacksvc.New(st.feedback, analysis.NewAnalyzer(gw, gw))
	insightSvc := insight.New(st.feedback, cluster.NewEngine(gw), narrative.NewWriter(gw), gw, st.report)
	policySvc := policysvc.New(st.policy, st.feedback)

	// Routing & Server
	h := handler.New(feedbackSvc, insightSvc, policySvc, gw, st.kind)
	srv := server.New(cfg.Port, server.NewRouter(h))

	return &App{server: srv, gateway: gw, stores: st}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	return errors.Join(
		a.server.Shutdown(ctx),
		a.gateway.Close(),
		a.stores.Close(),
	)
}
