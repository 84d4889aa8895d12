package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cantine/cantine/internal/rest"
	"github.com/cantine/cantine/internal/utils"
	"github.com/cantine/cantine/pkg/calweek"
	"github.com/cantine/cantine/pkg/meal"
	"github.com/cantine/cantine/pkg/policy"
	"github.com/cantine/cantine/pkg/user"
	"github.com/gorilla/mux"
)

type MealSnapshotDTO struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ScheduledDayDTO struct {
	Day                 string            `json:"day"`
	Date                string            `json:"date"`
	IsoDate             string            `json:"isoDate,omitempty"`
	Meals               []MealSnapshotDTO `json:"meals"`
	IsHoliday           bool              `json:"isHoliday"`
	HolidayName         string            `json:"holidayName,omitempty"`
	Editable            bool              `json:"editable"`
	AvailabilityMessage string            `json:"availabilityMessage"`
}

type WeeklyScheduleDTO struct {
	Week       string            `json:"week"`
	WeekOffset int               `json:"weekOffset"`
	Days       []ScheduledDayDTO `json:"days"`
}

type Handler struct {
	service Service
	clock   utils.Clock
}

func NewHandler(service Service, clock utils.Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

// GetWeek godoc
// @Summary Get the weekly schedule
// @Description Get the schedule for the week at the given offset from the current week, generating it on first access. Each day carries an editability verdict for the calling user.
// @Tags Schedule
// @Produce json
// @Param weekOffset query int false "Weeks relative to the current week, 0 by default"
// @Success 200 {object} WeeklyScheduleDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid weekOffset"
// @Router /api/weekly-meals [get]
// @Security XUserId
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weekOffset, ok := h.weekOffset(w, r)
	if !ok {
		return
	}
	currentUser, err := user.CurrentUser(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Authentication required"})
		return
	}

	schedule, err := h.service.GetOrCreate(r.Context(), weekOffset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(h.scheduleToDTO(schedule, weekOffset, currentUser.Role)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// AddMeal godoc
// @Summary Plan a meal on a day
// @Tags Schedule
// @Accept json
// @Produce json
// @Param dayName path string true "Weekday name, Lundi through Vendredi"
// @Param body body object{mealId=int} true "Meal to plan"
// @Success 200 {object} WeeklyScheduleDTO
// @Failure 403 {object} rest.ErrorResponse "Day is not editable"
// @Failure 404 {object} rest.ErrorResponse "Unknown day or meal"
// @Failure 409 {object} rest.ErrorResponse "Meal already planned"
// @Router /api/weekly-meals/{dayName}/meals [post]
// @Security XUserId
func (h *Handler) AddMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weekOffset, ok := h.weekOffset(w, r)
	if !ok {
		return
	}
	var body struct {
		MealId int `json:"mealId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	schedule, err := h.service.AddMealToDay(r.Context(), weekOffset, mux.Vars(r)["dayName"], body.MealId)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.writeSchedule(w, r, schedule, weekOffset)
}

// ReplaceMeal godoc
// @Summary Swap a planned meal for another
// @Description Replace a meal on a day. Selections pointing at the old meal follow the swap.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param dayName path string true "Weekday name"
// @Param mealId path int true "Currently planned meal"
// @Param body body object{newMealId=int} true "Replacement meal"
// @Success 200 {object} WeeklyScheduleDTO
// @Failure 403 {object} rest.ErrorResponse "Day is not editable"
// @Failure 404 {object} rest.ErrorResponse "Meal is not planned on this day"
// @Router /api/weekly-meals/{dayName}/meals/{mealId} [put]
// @Security XUserId
func (h *Handler) ReplaceMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	weekOffset, ok := h.weekOffset(w, r)
	if !ok {
		return
	}
	oldMealId, err := strconv.Atoi(vars["mealId"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid meal ID"})
		return
	}
	var body struct {
		NewMealId int `json:"newMealId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	schedule, err := h.service.ReplaceMealInDay(r.Context(), weekOffset, vars["dayName"], oldMealId, body.NewMealId)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.writeSchedule(w, r, schedule, weekOffset)
}

// RemoveMeal godoc
// @Summary Remove a planned meal from a day
// @Description Remove a meal from a day. Selections referencing it for that day and week are deleted.
// @Tags Schedule
// @Produce json
// @Param dayName path string true "Weekday name"
// @Param mealId path int true "Planned meal"
// @Success 200 {object} WeeklyScheduleDTO
// @Failure 403 {object} rest.ErrorResponse "Day is not editable"
// @Failure 404 {object} rest.ErrorResponse "Meal is not planned on this day"
// @Router /api/weekly-meals/{dayName}/meals/{mealId} [delete]
// @Security XUserId
func (h *Handler) RemoveMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	weekOffset, ok := h.weekOffset(w, r)
	if !ok {
		return
	}
	mealId, err := strconv.Atoi(vars["mealId"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid meal ID"})
		return
	}

	schedule, err := h.service.RemoveMealFromDay(r.Context(), weekOffset, vars["dayName"], mealId)
	if err != nil {
		h.writeMutationError(w, err)
		return
	}
	h.writeSchedule(w, r, schedule, weekOffset)
}

func (h *Handler) weekOffset(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("weekOffset")
	if raw == "" {
		return 0, true
	}
	weekOffset, err := strconv.Atoi(raw)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid weekOffset", Details: "weekOffset must be an integer"})
		return 0, false
	}
	return weekOffset, true
}

func (h *Handler) writeSchedule(w http.ResponseWriter, r *http.Request, schedule WeeklySchedule, weekOffset int) {
	currentUser, err := user.CurrentUser(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Authentication required"})
		return
	}
	if err := json.NewEncoder(w).Encode(h.scheduleToDTO(schedule, weekOffset, currentUser.Role)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDayNotEditable):
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrMealAlreadyPlanned):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrDayNotFound), errors.Is(err, ErrMealNotPlanned), errors.Is(err, meal.ErrMealNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrNoUser):
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Authentication required"})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) scheduleToDTO(schedule WeeklySchedule, weekOffset int, role user.Role) WeeklyScheduleDTO {
	today := h.clock.Now()
	monday := calweek.MondayOfWeek(today, weekOffset)

	days := make([]ScheduledDayDTO, 0, len(schedule.Days))
	for i, day := range schedule.Days {
		date := monday.AddDate(0, 0, i)
		meals := make([]MealSnapshotDTO, 0, len(day.Meals))
		for _, snapshot := range day.Meals {
			meals = append(meals, MealSnapshotDTO(snapshot))
		}
		editable := !day.IsHoliday && policy.Editable(date, today, role, weekOffset)
		message := policy.AvailabilityMessage(date, today, role, weekOffset)
		if day.IsHoliday {
			message = "Jour férié : " + day.HolidayName + ", les sélections sont fermées"
		}
		days = append(days, ScheduledDayDTO{
			Day:                 day.Day,
			Date:                day.Date,
			IsoDate:             day.ISODate,
			Meals:               meals,
			IsHoliday:           day.IsHoliday,
			HolidayName:         day.HolidayName,
			Editable:            editable,
			AvailabilityMessage: message,
		})
	}
	return WeeklyScheduleDTO{
		Week:       schedule.Week.String(),
		WeekOffset: weekOffset,
		Days:       days,
	}
}
