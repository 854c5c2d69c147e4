package di

import (
	"classbook/internal/bulk"

	reservationService "classbook/internal/domains/reservation/service"
)

func provideCoordinator(service reservationService.Reservation) *bulk.Coordinator {
	return bulk.New(service, 0)
}
