//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"lifepath-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideGraphStore,
	ProvideProfileStore,
	ProvideObjectStore,
	ProvideGeminiClient,
	ProvideTextGenerator,
	ProvideImageGenerator,
	ProvideEventPublisher,
	ProvideKeyedMutex,
	ProvideSessionRegistry,
	ProvideSynthesizer,
	ProvideImagePipeline,
	ProvideNodeAssembler,
	ProvideReachabilityDeleter,
	ProvideGraphHandler,
	ProvideProfileHandler,
	ProvideImageHandler,
	ProvideInterviewHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
