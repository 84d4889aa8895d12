package selection

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cantine/cantine/internal/rest"
	"github.com/cantine/cantine/pkg/schedule"
	"github.com/cantine/cantine/pkg/user"
	"github.com/gorilla/mux"
)

type SelectionDTO struct {
	Id     int    `json:"id"`
	UserId int    `json:"userId"`
	Week   string `json:"week"`
	Day    string `json:"day"`
	MealId int    `json:"mealId"`
}

type SelectionDetailsDTO struct {
	SelectionDTO
	UserName string `json:"userName"`
	MealName string `json:"mealName"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListSelections godoc
// @Summary List the current user's selections for a week
// @Tags Selections
// @Produce json
// @Param weekOffset query int false "Weeks relative to the current week, 0 by default"
// @Success 200 {array} SelectionDTO
// @Router /api/selections [get]
// @Security XUserId
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weekOffset, ok := weekOffsetParam(w, r)
	if !ok {
		return
	}
	selections, err := h.service.ListForCurrentUser(r.Context(), weekOffset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]SelectionDTO, 0, len(selections))
	for _, s := range selections {
		dtos = append(dtos, selectionToDTO(s))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// SelectMeal godoc
// @Summary Select a meal for a day
// @Description Record the current user's meal choice for a day, replacing any previous choice.
// @Tags Selections
// @Accept json
// @Produce json
// @Param body body object{day=string,mealId=int,weekOffset=int} true "Choice"
// @Success 201 {object} SelectionDTO
// @Failure 403 {object} rest.ErrorResponse "Day is not editable"
// @Failure 404 {object} rest.ErrorResponse "Meal is not offered on this day"
// @Router /api/selections [post]
// @Security XUserId
func (h *Handler) SelectMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var body struct {
		Day        string `json:"day"`
		MealId     int    `json:"mealId"`
		WeekOffset int    `json:"weekOffset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}

	selection, err := h.service.Select(r.Context(), body.WeekOffset, body.Day, body.MealId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(selectionToDTO(selection)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UnselectMeal godoc
// @Summary Remove the current user's selection for a day
// @Tags Selections
// @Produce json
// @Param dayName path string true "Weekday name"
// @Param weekOffset query int false "Weeks relative to the current week, 0 by default"
// @Success 204
// @Failure 403 {object} rest.ErrorResponse "Day is not editable"
// @Failure 404 {object} rest.ErrorResponse "No selection for this day"
// @Router /api/selections/{dayName} [delete]
// @Security XUserId
func (h *Handler) UnselectMeal(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weekOffset, ok := weekOffsetParam(w, r)
	if !ok {
		return
	}
	err := h.service.Unselect(r.Context(), weekOffset, mux.Vars(r)["dayName"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListWeekSelections godoc
// @Summary List every selection of a week
// @Description Admin overview of all users' choices for a week, with user and meal names.
// @Tags Selections
// @Produce json
// @Param weekOffset query int false "Weeks relative to the current week, 0 by default"
// @Success 200 {array} SelectionDetailsDTO
// @Router /api/selections/week [get]
// @Security XUserId
func (h *Handler) ListWeekSelections(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	weekOffset, ok := weekOffsetParam(w, r)
	if !ok {
		return
	}
	details, err := h.service.ListForWeek(r.Context(), weekOffset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]SelectionDetailsDTO, 0, len(details))
	for _, d := range details {
		dtos = append(dtos, SelectionDetailsDTO{
			SelectionDTO: selectionToDTO(d.Selection),
			UserName:     d.UserName,
			MealName:     d.MealName,
		})
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// ExportWeekSelections godoc
// @Summary Export a week's selections as CSV
// @Tags Selections
// @Produce text/csv
// @Param weekOffset query int false "Weeks relative to the current week, 0 by default"
// @Success 200 {string} string
// @Router /api/selections/export [get]
// @Security XUserId
func (h *Handler) ExportWeekSelections(w http.ResponseWriter, r *http.Request) {
	weekOffset, ok := weekOffsetParam(w, r)
	if !ok {
		return
	}
	csvData, err := h.service.ExportWeekCSV(r.Context(), weekOffset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="selections.csv"`)
	if _, err := w.Write([]byte(csvData)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrDayNotEditable):
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrMealNotOffered),
		errors.Is(err, ErrSelectionNotFound),
		errors.Is(err, schedule.ErrDayNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
	case errors.Is(err, user.ErrNoUser):
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Authentication required"})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func weekOffsetParam(w http.ResponseWriter, r *http.Request) (int, bool) {
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

func selectionToDTO(s Selection) SelectionDTO {
	return SelectionDTO{
		Id:     s.Id,
		UserId: s.UserId,
		Week:   s.WeekKey,
		Day:    s.DayName,
		MealId: s.MealId,
	}
}
