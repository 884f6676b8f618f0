package setup

import (
	"github.com/LavaJover/shvark-binary-engine/internal/delivery/kafkaconsumer"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/activation"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/commission"
	"github.com/LavaJover/shvark-binary-engine/internal/usecase/placement"
)

type UseCases struct {
	ConfigUsecase     usecase.ConfigUsecase
	PlacementUsecase  placement.PlacementUsecase
	CommissionEngine  *commission.Engine
	ActivationUsecase activation.ActivationUsecase
	VolumeConsumer    *kafkaconsumer.VolumeEventConsumer
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	configUsecase := usecase.NewDefaultConfigUsecase(deps.ConfigRepo, deps.Logger.Named("config"))

	placementUsecase := placement.NewDefaultPlacementUsecase(
		deps.Store,
		deps.Logger.Named("placement"),
		deps.Metrics,
		deps.Config.Placement.MaxRetries,
	)

	engine := commission.NewEngine(
		deps.Store,
		configUsecase,
		deps.Notifier,
		deps.Logger.Named("commission"),
		deps.Metrics,
	)

	activationUsecase := activation.NewDefaultActivationUsecase(
		engine,
		placementUsecase,
		deps.Logger.Named("activation"),
		deps.Metrics,
	)

	consumer := kafkaconsumer.NewVolumeEventConsumer(
		deps.Subscriber,
		activationUsecase,
		deps.Logger.Named("volume-consumer"),
		deps.Config.KafkaService.VolumeTopic,
		deps.Config.KafkaService.GroupID,
	)

	return &UseCases{
		ConfigUsecase:     configUsecase,
		PlacementUsecase:  placementUsecase,
		CommissionEngine:  engine,
		ActivationUsecase: activationUsecase,
		VolumeConsumer:    consumer,
	}
}
