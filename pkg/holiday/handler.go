package holiday

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/cantine/cantine/internal/rest"
	"github.com/gorilla/mux"
)

type HolidayDTO struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	Recurring bool   `json:"recurring"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListHolidays godoc
// @Summary List holidays
// @Description Retrieve all configured holidays
// @Tags Holidays
// @Produce json
// @Success 200 {array} HolidayDTO
// @Router /api/holidays [get]
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	holidays, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, holiday := range holidays {
		dtos = append(dtos, HolidayToDTO(holiday))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// CreateHoliday godoc
// @Summary Create a holiday
// @Description Create a holiday and flag matching days on every stored weekly schedule
// @Tags Holidays
// @Accept json
// @Produce json
// @Param holiday body object{name=string,date=string,recurring=bool} true "Holiday details, date in YYYY-MM-DD format"
// @Success 201 {object} HolidayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid payload"
// @Failure 409 {object} rest.ErrorResponse "A holiday already exists on this date"
// @Router /api/holidays [post]
// @Security XUserId
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto HolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body format"})
		return
	}
	if dto.Name == "" || dto.Date == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Name and date are required"})
		return
	}
	date, err := time.Parse("2006-01-02", dto.Date)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid date format",
			Details: "Date must be in YYYY-MM-DD format",
		})
		return
	}

	created, err := h.service.Create(r.Context(), dto.Name, date, dto.Recurring)
	if err != nil {
		if errors.Is(err, ErrHolidayExists) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(HolidayToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// DeleteHoliday godoc
// @Summary Delete a holiday
// @Description Delete a holiday and clear its flag from every stored weekly schedule
// @Tags Holidays
// @Produce json
// @Param holidayId path string true "Holiday ID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Holiday not found"
// @Router /api/holidays/{holidayId} [delete]
// @Security XUserId
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)

	err := h.service.Delete(r.Context(), vars["holidayId"])
	if err != nil {
		if errors.Is(err, ErrHolidayNotFound) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportNational godoc
// @Summary Import the French national holidays
// @Description Insert the national holiday set for a year, skipping already configured dates
// @Tags Holidays
// @Produce json
// @Param year query int true "Calendar year"
// @Success 201 {array} HolidayDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid year"
// @Router /api/holidays/import [post]
// @Security XUserId
func (h *Handler) ImportNational(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1583 {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid year",
			Details: "Parameter year must be a number from 1583 on",
		})
		return
	}

	imported, err := h.service.ImportNational(r.Context(), year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]HolidayDTO, 0, len(imported))
	for _, holiday := range imported {
		dtos = append(dtos, HolidayToDTO(holiday))
	}
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func HolidayToDTO(h Holiday) HolidayDTO {
	return HolidayDTO{
		Id:        h.Id,
		Name:      h.Name,
		Date:      h.Date.Format("2006-01-02"),
		Recurring: h.Recurring,
	}
}
