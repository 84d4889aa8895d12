package app

import (
	"context"

	"github.com/cantine/cantine/internal/config"
	"github.com/cantine/cantine/internal/event_bus"
	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/holiday"
	"github.com/cantine/cantine/pkg/meal"
	"github.com/cantine/cantine/pkg/notification"
	"github.com/cantine/cantine/pkg/schedule"
	"github.com/cantine/cantine/pkg/selection"
	"github.com/cantine/cantine/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	HolidayRepo    holiday.Repository
	HolidayService holiday.Service
	HolidayHandler *holiday.Handler

	MealRepo    meal.Repository
	MealService meal.Service
	MealHandler *meal.Handler

	ScheduleRepo    *schedule.RepositoryImpl
	ScheduleService schedule.Service
	ScheduleHandler *schedule.Handler

	SelectionRepo    *selection.RepositoryImpl
	SelectionService selection.Service
	SelectionHandler *selection.Handler

	Mailer      user.Mailer
	UserRepo    user.Repo
	UserService user.Service
	UserHandler *user.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.HolidayRepo = holiday.NewRepository(db)
	deps.HolidayService = holiday.NewService(deps.HolidayRepo, deps.EventBus)
	deps.HolidayHandler = holiday.NewHandler(deps.HolidayService)

	deps.ScheduleRepo = schedule.NewRepository(db)
	deps.SelectionRepo = selection.NewRepository(db)

	deps.MealRepo = meal.NewRepository(db)
	deps.MealService = meal.NewService(deps.MealRepo, []meal.UsageChecker{deps.ScheduleRepo, deps.SelectionRepo}, deps.EventBus)
	deps.MealHandler = meal.NewHandler(deps.MealService)

	deps.ScheduleService = schedule.NewService(
		deps.ScheduleRepo,
		deps.MealService,
		deps.HolidayService,
		deps.SelectionRepo,
		deps.Clock,
		deps.EventBus,
	)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService, deps.Clock)

	deps.SelectionService = selection.NewService(deps.SelectionRepo, deps.ScheduleService, deps.Clock)
	deps.SelectionHandler = selection.NewHandler(deps.SelectionService)

	if cfg.Mail.Enabled {
		mailer, err := notification.NewSESMailer(context.Background(), cfg.Mail)
		if err != nil {
			return nil, err
		}
		deps.Mailer = mailer
	} else {
		deps.Mailer = notification.NewLogMailer()
	}

	deps.UserRepo = user.NewUserRepo(db)
	deps.UserService = user.NewUserService(deps.UserRepo, deps.Mailer, deps.SelectionRepo)
	deps.UserHandler = user.NewHandler(deps.UserService)

	return deps, nil
}
