package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/Freight-Shipment-Assistant/agent/agents/assistant"
	orchestrator "github.com/tanpawarit/Freight-Shipment-Assistant/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/contract"
	"github.com/tanpawarit/Freight-Shipment-Assistant/agent/extraction"
	llmx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/llm"
	toolx "github.com/tanpawarit/Freight-Shipment-Assistant/agent/tool"
	configx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/config"
	openrouterx "github.com/tanpawarit/Freight-Shipment-Assistant/pkg/openrouter"
	"github.com/tanpawarit/Freight-Shipment-Assistant/server"
	"github.com/tanpawarit/Freight-Shipment-Assistant/shipment"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat, extraction and shipment HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return err
	}
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return err
	}
	if err := llmCfg.Validate(); err != nil {
		return err
	}
	loc, err := appCfg.location()
	if err != nil {
		return err
	}

	store, closer, err := openStore(ctx, *appCfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	if appCfg.SeedOwner != "" && appCfg.driver() == storeDriverMemory {
		if _, err := shipment.Seed(ctx, store, appCfg.SeedOwner, time.Now()); err != nil {
			return err
		}
	}

	planner, err := assistant.NewPlannerFromConfig(ctx, *llmCfg)
	if err != nil {
		return err
	}
	chat, err := orchestrator.New(planner, toolx.NewExecutor(store, toolx.WithLocation(loc)), orchestrator.Config{
		MaxIterations: appCfg.ChatMaxIterations,
	})
	if err != nil {
		return err
	}

	extractorCfg := llmCfg.OpenRouterFor(contractx.AgentTypeExtractor)
	extractor, err := extraction.New(openrouterx.NewClient(extractorCfg), extractorCfg)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Chat:      chat,
		Extractor: extractor,
		Store:     store,
	})

	log.Info().
		Str("addr", appCfg.Addr).
		Int("max_iterations", appCfg.ChatMaxIterations).
		Str("timezone", loc.String()).
		Msg("starting freight assistant")
	return server.Run(ctx, appCfg.Addr, router)
}

