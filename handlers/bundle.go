package handlers

import (
	"tajriba/services/booking"
	"tajriba/services/catalog"
	"tajriba/services/user"

	"go.uber.org/zap"
)

// HandlerBundle groups the HTTP handlers so route registration takes a
// single dependency.
type HandlerBundle struct {
	User    *UserHandler
	Service *ServiceHandler
	Booking *BookingHandler
}

func NewHandlerBundle(
	userSvc user.UserService,
	catalogSvc catalog.CatalogService,
	bookingSvc booking.BookingService,
	logger *zap.Logger,
) *HandlerBundle {
	return &HandlerBundle{
		User:    NewUserHandler(userSvc, logger),
		Service: NewServiceHandler(catalogSvc, logger),
		Booking: NewBookingHandler(bookingSvc, logger),
	}
}
