package di

import (
	"lifepath-backend/application/ports"
	"lifepath-backend/application/services"
	"lifepath-backend/application/session"
	"lifepath-backend/infrastructure/config"
	"lifepath-backend/interfaces/http/rest"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	GraphStore   ports.GraphStore
	ProfileStore ports.ProfileStore
	ObjectStore  ports.ObjectStore
	Synthesizer  *services.Synthesizer
	Images       *services.ImagePipeline
	Assembler    *services.NodeAssembler
	Deleter      *services.ReachabilityDeleter
	Sessions     *session.Registry
	Router       *rest.Router
}
