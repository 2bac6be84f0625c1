package di

import (
	"context"

	"lifepath-backend/application/ports"
	"lifepath-backend/application/services"
	"lifepath-backend/application/session"
	"lifepath-backend/infrastructure/ai/gemini"
	"lifepath-backend/infrastructure/config"
	"lifepath-backend/infrastructure/messaging/eventbridge"
	"lifepath-backend/infrastructure/persistence/dynamodb"
	"lifepath-backend/infrastructure/storage/s3store"
	"lifepath-backend/interfaces/http/rest"
	"lifepath-backend/interfaces/http/rest/handlers"
	"lifepath-backend/pkg/locks"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideGraphStore creates the DynamoDB graph store
func ProvideGraphStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GraphStore {
	return dynamodb.NewGraphStore(client, cfg.DynamoDBTable, logger)
}

// ProvideProfileStore creates the DynamoDB profile store
func ProvideProfileStore(client *awsdynamodb.Client, cfg *config.Config) ports.ProfileStore {
	return dynamodb.NewProfileStore(client, cfg.DynamoDBTable)
}

// ProvideObjectStore creates the S3 object store
func ProvideObjectStore(awsCfg aws.Config, cfg *config.Config, logger *zap.Logger) ports.ObjectStore {
	return s3store.NewObjectStore(awsCfg, s3store.Options{
		Endpoint:     cfg.S3Endpoint,
		AccessKeyID:  cfg.S3AccessKeyID,
		SecretKey:    cfg.S3SecretAccessKey,
		UsePathStyle: cfg.S3UsePathStyle,
	}, logger)
}

// ProvideGeminiClient creates the shared Gemini API client
func ProvideGeminiClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	return gemini.NewClient(ctx, cfg.GeminiAPIKey)
}

// ProvideTextGenerator creates the Gemini text generator
func ProvideTextGenerator(client *genai.Client, cfg *config.Config, logger *zap.Logger) ports.TextGenerator {
	return gemini.NewTextGenerator(client, cfg.TextModel, logger)
}

// ProvideImageGenerator creates the Gemini image generator
func ProvideImageGenerator(client *genai.Client, cfg *config.Config, logger *zap.Logger) ports.ImageGenerator {
	return gemini.NewImageGenerator(client, cfg.ImageModel, logger)
}

// ProvideEventPublisher creates the EventBridge publisher, or nil when
// eventing is disabled.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.EnableEvents {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideKeyedMutex creates the per-user mutex set
func ProvideKeyedMutex() *locks.KeyedMutex {
	return locks.NewKeyedMutex()
}

// ProvideSessionRegistry creates the interview session registry
func ProvideSessionRegistry() *session.Registry {
	return session.NewRegistry()
}

// ProvideSynthesizer creates the event synthesizer
func ProvideSynthesizer(generator ports.TextGenerator, cfg *config.Config, logger *zap.Logger) *services.Synthesizer {
	return services.NewSynthesizer(generator, cfg.TextTimeout, logger)
}

// ProvideImagePipeline creates the image pipeline
func ProvideImagePipeline(objects ports.ObjectStore, generator ports.ImageGenerator, cfg *config.Config, logger *zap.Logger) *services.ImagePipeline {
	return services.NewImagePipeline(objects, generator, services.ImagePipelineConfig{
		ReferenceBucket: cfg.ReferenceBucket,
		EventBucket:     cfg.EventImageBucket,
		PresignTTL:      cfg.PresignTTL,
		GenerateTimeout: cfg.ImageTimeout,
	}, logger)
}

// ProvideNodeAssembler creates the node assembler
func ProvideNodeAssembler(
	graph ports.GraphStore,
	profiles ports.ProfileStore,
	synthesizer *services.Synthesizer,
	images *services.ImagePipeline,
	publisher ports.EventPublisher,
	userLocks *locks.KeyedMutex,
	logger *zap.Logger,
) *services.NodeAssembler {
	return services.NewNodeAssembler(graph, profiles, synthesizer, images, publisher, userLocks, logger)
}

// ProvideReachabilityDeleter creates the cascade deleter
func ProvideReachabilityDeleter(
	graph ports.GraphStore,
	images *services.ImagePipeline,
	publisher ports.EventPublisher,
	userLocks *locks.KeyedMutex,
	logger *zap.Logger,
) *services.ReachabilityDeleter {
	return services.NewReachabilityDeleter(graph, images, publisher, userLocks, logger)
}

// ProvideGraphHandler creates the graph handler
func ProvideGraphHandler(
	graph ports.GraphStore,
	assembler *services.NodeAssembler,
	deleter *services.ReachabilityDeleter,
	logger *zap.Logger,
) *handlers.GraphHandler {
	return handlers.NewGraphHandler(graph, assembler, deleter, logger)
}

// ProvideProfileHandler creates the profile handler
func ProvideProfileHandler(profiles ports.ProfileStore, logger *zap.Logger) *handlers.ProfileHandler {
	return handlers.NewProfileHandler(profiles, logger)
}

// ProvideImageHandler creates the image handler
func ProvideImageHandler(objects ports.ObjectStore, cfg *config.Config, logger *zap.Logger) *handlers.ImageHandler {
	return handlers.NewImageHandler(objects, cfg.ReferenceBucket, logger)
}

// ProvideInterviewHandler creates the interview handler
func ProvideInterviewHandler(
	sessions *session.Registry,
	generator ports.TextGenerator,
	cfg *config.Config,
	logger *zap.Logger,
) *handlers.InterviewHandler {
	return handlers.NewInterviewHandler(sessions, generator, cfg.TextTimeout, logger)
}

// ProvideRouter creates the configured HTTP router
func ProvideRouter(
	graphHandler *handlers.GraphHandler,
	profileHandler *handlers.ProfileHandler,
	imageHandler *handlers.ImageHandler,
	interviewHandler *handlers.InterviewHandler,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(graphHandler, profileHandler, imageHandler, interviewHandler, cfg.EnableCORS, logger)
}
